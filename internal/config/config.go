package config

import (
	"os"
	"path/filepath"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Account Account `yaml:"account"`
	Client  Client  `yaml:"client"`
	Paths   Paths   `yaml:"paths"`
	Trace   Trace   `yaml:"trace"`
}

type Account struct {
	Handle         string `yaml:"handle"`
	DefaultMessage string `yaml:"defaultMessage"`
	// DisablePost turns off the best-effort social post after a check-in.
	DisablePost bool `yaml:"disablePost"`
}

type Client struct {
	PDSHost string `yaml:"pdsHost"`
}

type Paths struct {
	Credentials string `yaml:"credentials"`
	Journal     string `yaml:"journal"`
}

type Trace struct {
	Enable   bool   `yaml:"enable"`
	Endpoint string `yaml:"endpoint"`
}

const defaultPDSHost = "https://bsky.social"

// Load reads the config file at path, or returns defaults when the file
// does not exist.
func Load(path string) (Config, error) {
	var config Config

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		if derr := yaml.NewDecoder(file).Decode(&config); derr != nil {
			return Config{}, derr
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	if config.Client.PDSHost == "" {
		config.Client.PDSHost = defaultPDSHost
	}

	home, herr := os.UserHomeDir()
	if herr != nil {
		home = "."
	}
	if config.Paths.Credentials == "" {
		config.Paths.Credentials = filepath.Join(home, ".anchor", "credentials.json")
	}
	if config.Paths.Journal == "" {
		config.Paths.Journal = filepath.Join(home, ".anchor", "journal.db")
	}

	return config, nil
}
