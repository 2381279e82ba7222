package util

import (
	"os"
	"path"
	"strings"
)

// WriteToFile writes the content to savePath, one entry per line, creating the parent folders
func WriteToFile(savePath string, content ...string) error {
	if err := ensureDir(savePath); err != nil {
		return err
	}
	return os.WriteFile(savePath, []byte(strings.Join(content, "\n")+"\n"), 0644)
}

// AppendToFile appends each entry as a line of savePath
func AppendToFile(savePath string, content ...string) error {
	if err := ensureDir(savePath); err != nil {
		return err
	}
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func ensureDir(savePath string) error {
	dir := path.Dir(savePath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// RemoveContents deletes everything in dir except the names in keep.
// A missing dir is not an error
func RemoveContents(dir string, keep ...string) error {
	d, err := os.Open(dir)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	kept := make(map[string]bool)
	for _, k := range keep {
		kept[k] = true
	}
	for _, name := range names {
		if kept[name] {
			continue
		}
		if err := os.RemoveAll(path.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
