//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/voxelsplace/bloxdschem/utils"
)

func usage() {
	fmt.Println("Usage: bloxdschem <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  img2schem input.png output.bloxdschem [config.yaml]   (convert an image to a schematic)")
	fmt.Println("  schem2glb input.bloxdschem output.glb                 (greedy-meshed GLB preview)")
	fmt.Println("  info input.bloxdschem                                 (print header and block counts)")
	fmt.Println("  palette                                               (list palette blocks)")
	fmt.Println("  schempack output.schempack input1.bloxdschem [...]    (bundle schematics)")
	fmt.Println("  schemunpack input.schempack output_dir                (extract a bundle)")
	fmt.Println("  gennoise <width> <height> <percentage> <amount> <output_dir>")
	fmt.Println("  gennoise <width> <height> <percentageMin> <percentageMax> <amount> <output_dir>")
}

func fail(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "img2schem":
		if len(os.Args) != 4 && len(os.Args) != 5 {
			usage()
			os.Exit(1)
		}
		cfg := utils.DefaultConfig()
		if len(os.Args) == 5 {
			var err error
			if cfg, err = utils.LoadConfig(os.Args[4]); err != nil {
				fail(err)
			}
		}
		if err := utils.RunImageToSchematic(os.Args[2], os.Args[3], cfg); err != nil {
			fail(err)
		}
	case "schem2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunSchematicToGLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunInfo(os.Args[2], os.Stdout); err != nil {
			fail(err)
		}
		return
	case "palette":
		utils.RunPalette(os.Stdout)
		return
	case "schempack":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.CreatePack(os.Args[3:], os.Args[2]); err != nil {
			fail(err)
		}
	case "schemunpack":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.UnpackToDir(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "gennoise":
		var w, h, amt int
		var minP, maxP float64
		var outDir string
		switch len(os.Args) {
		case 7:
			if _, err := fmt.Sscan(os.Args[2], &w); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[3], &h); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[4], &minP); err != nil {
				fail(err)
			}
			maxP = minP
			if _, err := fmt.Sscan(os.Args[5], &amt); err != nil {
				fail(err)
			}
			outDir = os.Args[6]
		case 8:
			if _, err := fmt.Sscan(os.Args[2], &w); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[3], &h); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[4], &minP); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[5], &maxP); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[6], &amt); err != nil {
				fail(err)
			}
			outDir = os.Args[7]
		default:
			usage()
			os.Exit(1)
		}
		if err := utils.RunGenerateNoise(w, h, minP, maxP, amt, outDir); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(1)
	}

	color.Green("Operation completed!")
}
