// orbit - 3D ring menu demo
//
// A carousel of menu items arranged on a 3D ring, with submenus that
// spring out of selected items.
//
// Controls:
//
//	Scroll      - Spin the ring (momentum with snap)
//	Click       - Select an item / submenu entry
//	Left/Right  - Step selection
//	Enter       - Activate the highlighted item
//	Esc         - Close submenu, then quit
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orbitmenu/orbit/pkg/models"
)

var (
	configPath string
	targetFPS  int
	debugLog   bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "3D ring menu demo",
		Long: `orbit - 3D ring menu demo

A carousel of menu items on a 3D ring. Selecting a non-leaf item spins
it to the front and opens a submenu ring with a floating preview.

Controls:
  Scroll      - Spin the ring
  Click       - Select an item
  Left/Right  - Step selection
  Enter       - Activate highlighted item
  Esc         - Close submenu, then quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to menu YAML (default: built-in demo menu)")
	cmd.Flags().IntVar(&targetFPS, "fps", 60, "Target FPS")
	cmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Debug logging")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a menu config and print its shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate()
		},
	}
	cmd.AddCommand(validateCmd)

	infoCmd := &cobra.Command{
		Use:   "info <model.glb|model.obj|model.stl>",
		Short: "Display preview model information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	cmd.AddCommand(infoCmd)

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if debugLog {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run() error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	menu, err := LoadMenuConfig(configPath)
	if err != nil {
		return err
	}

	game, err := newGame(menu, targetFPS, log)
	if err != nil {
		return err
	}
	defer game.shutdown()

	ebiten.SetWindowSize(1024, 640)
	ebiten.SetWindowTitle(menu.Title)
	ebiten.SetTPS(targetFPS)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}

func runValidate() error {
	menu, err := LoadMenuConfig(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("Title:  %s\n", menu.Title)
	fmt.Printf("Items:  %d top-level, %d total\n", len(menu.Items), menu.countItems())
	for _, item := range menu.Items {
		suffix := ""
		if n := len(item.Children); n > 0 {
			suffix = fmt.Sprintf(" (%d children)", n)
		}
		fmt.Printf("  - %-12s %s%s\n", item.Label, item.ID, suffix)
	}
	return nil
}

func runInfo(modelPath string) error {
	info, err := os.Stat(modelPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(modelPath))
	var mesh *models.Mesh
	switch ext {
	case ".glb", ".gltf":
		mesh, err = models.LoadGLB(modelPath)
	case ".obj":
		mesh, err = models.LoadOBJ(modelPath)
	case ".stl":
		mesh, err = models.LoadSTL(modelPath)
	default:
		return fmt.Errorf("unsupported format: %s (use .glb, .obj, or .stl)", ext)
	}
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	size := mesh.Size()
	center := mesh.Center()

	fmt.Printf("File:       %s\n", filepath.Base(modelPath))
	fmt.Printf("Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Println()
	fmt.Printf("Vertices:   %d\n", mesh.VertexCount())
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Printf("Edges:      %d\n", len(mesh.Edges()))
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", mesh.BoundsMin.X, mesh.BoundsMin.Y, mesh.BoundsMin.Z)
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", mesh.BoundsMax.X, mesh.BoundsMax.Y, mesh.BoundsMax.Z)
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	return nil
}
