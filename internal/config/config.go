package config

import (
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/exjson"
	"github.com/ysmood/gson"

	"github.com/ImSingee/mozinstall/internal/lib/shells"
)

// EnvConfigFile names a config file that takes precedence over FileNames
const EnvConfigFile = "MOZINSTALL_CONFIG"

var FileNames = []string{
	".mozinstallrc",
	".mozinstallrc.json",
	"mozinstall.config.json",
}

// Config holds the defaults read from a mozinstall rc file. Command line
// flags override every field.
type Config struct {
	App           string
	Destination   string
	InstallerArgs []string
	DeleteArchive bool

	// File is the file the config was read from, empty if none was found
	File string
}

func IsNotExist(err error) bool {
	return ee.Is(err, os.ErrNotExist)
}

func Read(filename string) (map[string]gson.JSON, error) {
	// only parse json now

	var obj map[string]any
	err := exjson.Read(filename, &obj)
	if err != nil {
		return nil, err
	}

	return gson.New(obj).Map(), nil
}

// Load reads filename, or the first config file found in dir when filename
// is empty. No config file at all is not an error.
func Load(filename, dir string) (*Config, error) {
	if filename == "" {
		filename = os.Getenv(EnvConfigFile)
	}
	if filename != "" {
		return parse(filename)
	}

	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			if IsNotExist(err) {
				continue
			}
			return nil, ee.Wrapf(err, "cannot stat config file %s", p)
		}
		return parse(p)
	}

	return &Config{}, nil
}

func parse(filename string) (*Config, error) {
	m, err := Read(filename)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot read config file %s", filename)
	}

	c := &Config{File: filename}

	c.App, _ = m["app"].Val().(string)
	c.Destination, _ = m["destination"].Val().(string)
	c.DeleteArchive, _ = m["deleteArchive"].Val().(bool)

	c.InstallerArgs, err = installerArgs(m["installerArgs"].Val())
	if err != nil {
		return nil, ee.Wrapf(err, "invalid installerArgs in %s", filename)
	}

	return c, nil
}

// installerArgs accepts either a command line string or a list of strings
func installerArgs(v any) ([]string, error) {
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case string:
		return shells.Split(raw)
	case []any:
		args := make([]string, 0, len(raw))
		for _, item := range raw {
			arg, ok := item.(string)
			if !ok {
				return nil, ee.Errorf("unexpected item %v", item)
			}
			args = append(args, arg)
		}
		return args, nil
	default:
		return nil, ee.Errorf("unexpected type %T", raw)
	}
}
