package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxelsplace/bloxdschem/schem"
)

// CreatePack reads schematic files and writes them to outputFile as a
// content-defined, zstd-compressed pack.
func CreatePack(inputFiles []string, outputFile string) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no schematic files provided")
	}
	type item struct {
		name string
		data []byte
		err  error
	}
	items := make([]item, len(inputFiles))

	var wg sync.WaitGroup
	for i := range inputFiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := inputFiles[i]
			b, err := os.ReadFile(path)
			if err != nil {
				items[i].err = err
				return
			}
			if _, err := schem.Decode(b); err != nil {
				items[i].err = fmt.Errorf("%s: %w", path, err)
				return
			}
			items[i] = item{name: filepath.Base(path), data: b}
		}(i)
	}
	wg.Wait()

	pack := &schem.Pack{Entries: make([]schem.PackEntry, len(items))}
	for i, it := range items {
		if it.err != nil {
			return it.err
		}
		pack.Entries[i] = schem.PackEntry{Name: it.name, Data: it.data}
	}
	start := time.Now()
	data, err := pack.MarshalEx(schem.LayoutCDC, schem.PackCompZstd)
	if err != nil {
		return err
	}
	fmt.Printf("packed %d schematics into %d bytes in %d ms\n", len(items), len(data), time.Since(start).Milliseconds())
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes every schematic in a pack into outputDir.
func UnpackToDir(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	pack, _, err := schem.UnmarshalPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	// names come from the pack; never let them escape outputDir
	names := make([]string, len(pack.Entries))
	taken := make(map[string]string, len(pack.Entries))
	for i, e := range pack.Entries {
		name := filepath.Base(filepath.Clean("/" + e.Name))
		if name == "/" || name == "." || name == ".." {
			return fmt.Errorf("pack entry %q has no usable file name", e.Name)
		}
		if prev, dup := taken[name]; dup {
			return fmt.Errorf("pack entries %q and %q both unpack to %s", prev, e.Name, name)
		}
		taken[name] = e.Name
		names[i] = name
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(pack.Entries))
	for i, e := range pack.Entries {
		wg.Add(1)
		go func(name string, e schem.PackEntry) {
			defer wg.Done()
			if err := os.WriteFile(filepath.Join(outputDir, name), e.Data, 0o644); err != nil {
				errCh <- err
			}
		}(names[i], e)
	}
	wg.Wait()
	close(errCh)
	if err, ok := <-errCh; ok {
		return err
	}
	return nil
}
