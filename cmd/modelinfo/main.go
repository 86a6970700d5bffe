// modelinfo is a CLI utility for inspecting 3D model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ventengine/Modelz/internal/config"
	"github.com/ventengine/Modelz/internal/logger"
	"github.com/ventengine/Modelz/pkg/model3d"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Route library logs through the tool logger
	model3d.SetLogger(logger.Log)

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "meshes", "ls":
		cmdMeshes(cfg, args)
	case "materials", "mats":
		cmdMaterials(cfg, args)
	case "validate", "check":
		cmdValidate(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modelinfo - 3D model file inspector (OBJ, glTF, GLB, STL, PLY)

Usage:
  modelinfo [options] <command> <file>

Commands:
  info <file>       Show a model summary (counts, bounds)
  meshes <file>     List meshes with topology and counts
  materials <file>  List materials with colors and textures
  validate <file>   Check structural invariants, exit 1 on failure

Options:
  -config <path>    Config file (default: ./modelz.yaml)
  -debug            Enable debug logging
  -log-file <path>  Write logs to a file
  -yaml             Render reports as YAML
  -formats <list>   Comma-separated format allowlist (obj,gltf,stl,ply)
  -format <name>    Force the input format, bypassing extension detection
  -no-validate      Skip structural validation after loading

Examples:
  modelinfo info cube.obj
  modelinfo -yaml meshes scene.glb
  modelinfo -format obj info export.tmp
  modelinfo -formats obj,stl validate part.stl`)
}

// parseFormat maps a -format flag value to a Format. "glb" is
// accepted as an alias since extension detection treats it as glTF.
func parseFormat(name string) (model3d.Format, error) {
	if strings.EqualFold(name, "glb") {
		return model3d.FormatGLTF, nil
	}
	for _, f := range []model3d.Format{
		model3d.FormatOBJ,
		model3d.FormatGLTF,
		model3d.FormatSTL,
		model3d.FormatPLY,
	} {
		if strings.EqualFold(name, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown format %q (obj, gltf, glb, stl, ply)", name)
}

// resolveFormat picks the format to load with: the -format override
// when given, extension detection otherwise. Exits when the format is
// unknown or disabled by the allowlist.
func resolveFormat(cfg *config.Config, path string) model3d.Format {
	var format model3d.Format
	var err error
	if cfg.Loader.Force != "" {
		format, err = parseFormat(cfg.Loader.Force)
	} else {
		format, err = model3d.DetectFormat(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Loader.FormatEnabled(format.String()) {
		fmt.Fprintf(os.Stderr, "Format %s is disabled by configuration\n", format)
		os.Exit(1)
	}
	return format
}

// loadModel runs the shared pipeline: resolve the format, load and
// optionally validate.
func loadModel(cfg *config.Config, path string) *model3d.Model {
	format := resolveFormat(cfg, path)

	model, err := model3d.LoadFormat(path, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Loader.Validate {
		if err := model.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid model: %v\n", err)
			os.Exit(1)
		}
	}

	return model
}

func printYAML(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

// formatVec renders a vector with the configured float precision.
func formatVec(v [3]float32, prec int) string {
	return fmt.Sprintf("(%.*f, %.*f, %.*f)", prec, v[0], prec, v[1], prec, v[2])
}

func formatRGBA(c [4]float32, prec int) string {
	return fmt.Sprintf("(%.*f, %.*f, %.*f, %.*f)", prec, c[0], prec, c[1], prec, c[2], prec, c[3])
}

// materialLabel names a mesh's material for table output: the material
// name, its index when unnamed, or "-" when no material is assigned.
func materialLabel(model *model3d.Model, mesh *model3d.Mesh) string {
	if mesh.MaterialIndex == nil {
		return "-"
	}
	mi := *mesh.MaterialIndex
	if mi < 0 || mi >= len(model.Materials) {
		return fmt.Sprintf("#%d (missing)", mi)
	}
	if name := model.Materials[mi].Name; name != "" {
		return name
	}
	return fmt.Sprintf("#%d", mi)
}

type boundsReport struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

type modelReport struct {
	File      string        `yaml:"file"`
	Format    string        `yaml:"format"`
	Meshes    int           `yaml:"meshes"`
	Materials int           `yaml:"materials"`
	Vertices  int           `yaml:"vertices"`
	Triangles int           `yaml:"triangles"`
	Bounds    *boundsReport `yaml:"bounds,omitempty"`
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelinfo info <file>")
		os.Exit(1)
	}

	model := loadModel(cfg, args[0])

	report := modelReport{
		File:      args[0],
		Format:    model.Format.String(),
		Meshes:    len(model.Meshes),
		Materials: len(model.Materials),
		Vertices:  model.VertexCount(),
		Triangles: model.TriangleCount(),
	}
	if b, ok := model.Bounds(); ok {
		report.Bounds = &boundsReport{Min: b.Min, Max: b.Max}
	}

	if cfg.Output.Format == "yaml" {
		printYAML(report)
		return
	}

	prec := cfg.Output.Precision
	fmt.Printf("File:      %s\n", report.File)
	fmt.Printf("Format:    %s\n", report.Format)
	fmt.Printf("Meshes:    %d\n", report.Meshes)
	fmt.Printf("Materials: %d\n", report.Materials)
	fmt.Printf("Vertices:  %d\n", report.Vertices)
	fmt.Printf("Triangles: %d\n", report.Triangles)
	if report.Bounds != nil {
		fmt.Printf("Bounds:    min %s  max %s\n",
			formatVec(report.Bounds.Min, prec), formatVec(report.Bounds.Max, prec))
	}
}

type meshReport struct {
	Name      string `yaml:"name,omitempty"`
	Mode      string `yaml:"mode"`
	Vertices  int    `yaml:"vertices"`
	Triangles int    `yaml:"triangles"`
	Indices   string `yaml:"indices,omitempty"`
	Material  string `yaml:"material,omitempty"`
}

func cmdMeshes(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelinfo meshes <file>")
		os.Exit(1)
	}

	model := loadModel(cfg, args[0])

	reports := make([]meshReport, 0, len(model.Meshes))
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		r := meshReport{
			Name:      mesh.Name,
			Mode:      mesh.Mode.String(),
			Vertices:  mesh.VertexCount(),
			Triangles: mesh.TriangleCount(),
		}
		if mesh.Indices != nil {
			r.Indices = mesh.Indices.Width.String()
		}
		if mesh.MaterialIndex != nil {
			r.Material = materialLabel(model, mesh)
		}
		reports = append(reports, r)
	}

	if cfg.Output.Format == "yaml" {
		printYAML(reports)
		return
	}

	fmt.Printf("%-4s %-24s %-14s %9s %10s %8s  %s\n",
		"#", "NAME", "MODE", "VERTICES", "TRIANGLES", "INDICES", "MATERIAL")
	for i := range model.Meshes {
		mesh := &model.Meshes[i]
		r := &reports[i]
		name := r.Name
		if name == "" {
			name = "-"
		}
		indices := r.Indices
		if indices == "" {
			indices = "-"
		}
		fmt.Printf("%-4d %-24s %-14s %9d %10d %8s  %s\n",
			i, name, r.Mode, r.Vertices, r.Triangles, indices, materialLabel(model, mesh))
	}
}

type textureReport struct {
	Name      string `yaml:"name,omitempty"`
	Path      string `yaml:"path,omitempty"`
	Bytes     int    `yaml:"bytes,omitempty"`
	MIME      string `yaml:"mime,omitempty"`
	MagFilter string `yaml:"mag_filter,omitempty"`
	MinFilter string `yaml:"min_filter,omitempty"`
	WrapS     string `yaml:"wrap_s"`
	WrapT     string `yaml:"wrap_t"`
}

type materialReport struct {
	Name        string         `yaml:"name,omitempty"`
	BaseColor   *[4]float32    `yaml:"base_color,omitempty,flow"`
	AlphaMode   string         `yaml:"alpha_mode"`
	AlphaCutoff *float32       `yaml:"alpha_cutoff,omitempty"`
	DoubleSided bool           `yaml:"double_sided"`
	Texture     *textureReport `yaml:"diffuse_texture,omitempty"`
}

func newTextureReport(tex *model3d.Texture) *textureReport {
	r := &textureReport{
		Name:  tex.Name,
		Path:  tex.Image.Path,
		Bytes: len(tex.Image.Data),
		MIME:  tex.Image.MIME,
		WrapS: tex.Sampler.WrapS.String(),
		WrapT: tex.Sampler.WrapT.String(),
	}
	if tex.Sampler.MagFilter != model3d.MagUndefined {
		r.MagFilter = tex.Sampler.MagFilter.String()
	}
	if tex.Sampler.MinFilter != model3d.MinUndefined {
		r.MinFilter = tex.Sampler.MinFilter.String()
	}
	return r
}

func cmdMaterials(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelinfo materials <file>")
		os.Exit(1)
	}

	model := loadModel(cfg, args[0])

	reports := make([]materialReport, 0, len(model.Materials))
	for i := range model.Materials {
		mat := &model.Materials[i]
		r := materialReport{
			Name:        mat.Name,
			BaseColor:   mat.BaseColor,
			AlphaMode:   mat.AlphaMode.String(),
			AlphaCutoff: mat.AlphaCutoff,
			DoubleSided: mat.DoubleSided,
		}
		if mat.DiffuseTexture != nil {
			r.Texture = newTextureReport(mat.DiffuseTexture)
		}
		reports = append(reports, r)
	}

	if cfg.Output.Format == "yaml" {
		printYAML(reports)
		return
	}

	if len(reports) == 0 {
		fmt.Println("No materials")
		return
	}

	prec := cfg.Output.Precision
	for i, r := range reports {
		name := r.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("[%d] %s\n", i, name)
		if r.BaseColor != nil {
			fmt.Printf("    base color:  %s\n", formatRGBA(*r.BaseColor, prec))
		}
		if r.AlphaCutoff != nil {
			fmt.Printf("    alpha:       %s (cutoff %.*f)\n", r.AlphaMode, prec, *r.AlphaCutoff)
		} else {
			fmt.Printf("    alpha:       %s\n", r.AlphaMode)
		}
		fmt.Printf("    double side: %v\n", r.DoubleSided)
		if r.Texture != nil {
			switch {
			case r.Texture.Path != "":
				fmt.Printf("    texture:     %s\n", r.Texture.Path)
			case r.Texture.Bytes > 0:
				mime := r.Texture.MIME
				if mime == "" {
					mime = "unknown type"
				}
				fmt.Printf("    texture:     embedded (%s, %d bytes)\n", mime, r.Texture.Bytes)
			}
			mag, min := r.Texture.MagFilter, r.Texture.MinFilter
			if mag == "" {
				mag = "Undefined"
			}
			if min == "" {
				min = "Undefined"
			}
			fmt.Printf("    sampling:    mag %s, min %s, wrap %s/%s\n",
				mag, min, r.Texture.WrapS, r.Texture.WrapT)
		}
	}
}

func cmdValidate(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: modelinfo validate <file>")
		os.Exit(1)
	}

	format := resolveFormat(cfg, args[0])

	// Validation is the whole point here, the no-validate flag does
	// not apply.
	model, err := model3d.LoadFormat(args[0], format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := model.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: %s (%d meshes, %d vertices, %d triangles)\n",
		args[0], len(model.Meshes), model.VertexCount(), model.TriangleCount())
}
