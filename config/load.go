package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

// LoadWithEnv reads <name>.yaml from the working directory, or from one of
// dirs relative to it, and then applies environment overrides on top.
func LoadWithEnv[T any](name string, dirs ...string) (*T, error) {
	path, err := locateConfigFile(name+".yaml", dirs)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	yamlTree := k.Raw()
	envProvider := env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return canonicalizeEnvKey(key, yamlTree), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "apply environment overrides")
	}

	cfg := new(T)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{DecoderConfig: decoderConfig(cfg)}); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	return cfg, nil
}

func decoderConfig(result any) *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		// Overridden keys may differ in case from the struct fields.
		MatchName: strings.EqualFold,
	}
}

func locateConfigFile(filename string, dirs []string) (string, error) {
	candidates := []string{filepath.Join(defaultPath, filename)}
	if len(dirs) > 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "os.Getwd")
		}
		for _, dir := range dirs {
			candidates = append(candidates, filepath.Join(pwd, dir, filename))
		}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("config file %s not found in any search path", filename)
}

// canonicalizeEnvKey maps an ENV_STYLE key onto the dotted path of the YAML
// file, keeping the file's spelling: TOKEN_SECRET -> token.secret,
// POSTGRES_SSLMODE -> postgres.sslMode. Segments the file does not know are
// kept lower-cased.
func canonicalizeEnvKey(rawKey string, tree map[string]any) string {
	var path []string
	for _, segment := range strings.Split(strings.ToLower(rawKey), "_") {
		if segment == "" {
			continue
		}

		var key string
		key, tree = matchKey(tree, segment)
		path = append(path, key)
	}

	return strings.Join(path, ".")
}

// matchKey returns the key of tree that equals segment once both are folded,
// with its subtree. Without a match it returns segment and a nil subtree.
func matchKey(tree map[string]any, segment string) (string, map[string]any) {
	want := foldKey(segment)
	for key, value := range tree {
		if foldKey(key) != want {
			continue
		}
		child, _ := value.(map[string]any)

		return key, child
	}

	return segment, nil
}

// foldKey keeps only letters and digits, lower-cased.
func foldKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, s)
}

// replicasFromEnv reads POSTGRES_REPLICAS_<n>_{HOST,PORT,USERNAME,PASSWORD}
// for n = 0, 1, ... up to the first index without a host or port.
func replicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig
	for i := 0; ; i++ {
		get := func(field string) string {
			return os.Getenv(fmt.Sprintf("POSTGRES_REPLICAS_%d_%s", i, field))
		}

		host, port := get("HOST"), get("PORT")
		if host == "" || port == "" {
			return replicas
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: get("USERNAME"),
			Password: get("PASSWORD"),
		})
	}
}
