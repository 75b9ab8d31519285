package runner

import (
	"os"
	"path"
	"path/filepath"

	"github.com/src-d/enry/v2"
)

// sniffLimit bounds how much of an extensionless file is read for language
// detection.
const sniffLimit = 8 * 1024

// PythonFiles filters the input to the files the imports hook should see.
// Files with a .py extension qualify directly; extensionless files are
// content-sniffed for a Python shebang or syntax. Non-empty include globs
// additionally restrict by base name.
func PythonFiles(dir string, files, includeGlobs []string) []string {
	var selected []string

	for _, rel := range files {
		if !matchesGlobs(rel, includeGlobs) {
			continue
		}

		if isPython(dir, rel) {
			selected = append(selected, rel)
		}
	}

	return selected
}

func matchesGlobs(rel string, globs []string) bool {
	if len(globs) == 0 {
		return true
	}

	for _, glob := range globs {
		if ok, err := path.Match(glob, path.Base(rel)); err == nil && ok {
			return true
		}
	}

	return false
}

func isPython(dir, rel string) bool {
	if path.Ext(rel) == ".py" {
		return true
	}

	if path.Ext(rel) != "" {
		return false
	}

	content := readHead(filepath.Join(dir, filepath.FromSlash(rel)))
	if len(content) == 0 {
		return false
	}

	return enry.GetLanguage(path.Base(rel), content) == "Python"
}

func readHead(full string) []byte {
	file, err := os.Open(full)
	if err != nil {
		return nil
	}
	defer file.Close()

	buf := make([]byte, sniffLimit)

	n, err := file.Read(buf)
	if n <= 0 || (err != nil && n == 0) {
		return nil
	}

	return buf[:n]
}
