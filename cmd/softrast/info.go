package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <mesh>",
		Short: "Display mesh information",
		Long:  "Display information about a mesh file including format, vertex and triangle counts, normals and bounding box.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
}

func runInfo(meshPath string) error {
	info, err := os.Stat(meshPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	mesh, err := loadMesh(meshPath)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(meshPath))
	fmt.Printf("File:       %s\n", filepath.Base(meshPath))
	fmt.Printf("Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Printf("Size:       %.2f KB\n", float64(info.Size())/1024)
	fmt.Printf("Name:       %s\n", mesh.Name)
	fmt.Println()
	fmt.Printf("Vertices:   %d\n", mesh.VertexCount())
	fmt.Printf("Triangles:  %d\n", mesh.TriangleCount())
	fmt.Printf("Normals:    %t\n", mesh.HasNormals())

	if mesh.VertexCount() == 0 {
		return nil
	}
	lo, hi := mesh.Bounds()
	size := hi.Sub(lo)
	fmt.Println()
	fmt.Printf("Bounds min: (%.3f, %.3f, %.3f)\n", lo.X, lo.Y, lo.Z)
	fmt.Printf("Bounds max: (%.3f, %.3f, %.3f)\n", hi.X, hi.Y, hi.Z)
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	return nil
}
