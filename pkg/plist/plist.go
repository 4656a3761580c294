// pkg/plist/plist.go - reading and writing property list files on a repo filesystem.

package plist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"howett.net/plist"
)

// Dict is a decoded plist dictionary.
type Dict = map[string]interface{}

// Array is a decoded plist array.
type Array = []interface{}

// Decode parses plist data (XML, binary or OpenStep) into v.
func Decode(data []byte, v interface{}) error {
	if _, err := plist.Unmarshal(data, v); err != nil {
		return err
	}
	return nil
}

// Encode renders v as a tab-indented XML plist, the format Munki tools write.
func Encode(v interface{}) ([]byte, error) {
	return plist.MarshalIndent(v, plist.XMLFormat, "\t")
}

// ReadFile loads the plist at path into v.
func ReadFile(fs billy.Filesystem, path string, v interface{}) error {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return err
	}
	if err := Decode(data, v); err != nil {
		return fmt.Errorf("parse plist %s: %w", path, err)
	}
	return nil
}

// ReadDict loads a plist whose top-level object is a dictionary.
func ReadDict(fs billy.Filesystem, path string) (Dict, error) {
	var d Dict
	if err := ReadFile(fs, path, &d); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("parse plist %s: top-level object is not a dictionary", path)
	}
	return d, nil
}

// WriteFile encodes v and writes it to path, creating parent directories and
// keeping the mode of an existing file.
func WriteFile(fs billy.Filesystem, path string, v interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encode plist %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var mode os.FileMode = 0o644
	if st, err := fs.Stat(path); err == nil && st.Mode().Perm() != 0 {
		mode = st.Mode().Perm()
	}
	return util.WriteFile(fs, path, data, mode)
}

// String returns d[key] when it is a string.
func String(d Dict, key string) string {
	s, _ := d[key].(string)
	return s
}

// Strings returns d[key] as a string slice, skipping non-string members.
func Strings(d Dict, key string) []string {
	arr, ok := d[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
