package fileutils

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mrnavastar/modcheck/compat"
	"github.com/tidwall/gjson"
	"github.com/zalando/go-keyring"
)

var ErrNoModMetadata = errors.New("no mod metadata found in jar")

func Setup(dotMinecraft string) error {
	workDir := filepath.Join(dotMinecraft, "modcheck")
	if err := keyring.Set(keyringService, keyringUser, dotMinecraft); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(workDir, "modpacks"), 0700); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(workDir, stateFile)); os.IsNotExist(err) {
		return os.WriteFile(filepath.Join(workDir, stateFile), []byte("{}"), 0644)
	}
	return nil
}

type ModJson struct {
	Id          string
	Version     string
	Name        string
	Description string
	Authors     []string
	Loader      string
	GameVersion string
}

// Metadata files in the order they are looked for inside a jar.
var metadataFiles = []string{
	"fabric.mod.json",
	"quilt.mod.json",
	"META-INF/neoforge.mods.toml",
	"META-INF/mods.toml",
	"mcmod.info",
}

// GetModJsonFromJar reads the loader metadata bundled in a mod jar.
func GetModJsonFromJar(path string) (ModJson, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return ModJson{}, err
	}
	defer reader.Close()

	files := make(map[string]*zip.File, len(reader.File))
	for _, file := range reader.File {
		files[file.Name] = file
	}

	for _, name := range metadataFiles {
		file, ok := files[name]
		if !ok {
			continue
		}

		content, err := readZipFile(file)
		if err != nil {
			return ModJson{}, fmt.Errorf("%s: %w", name, err)
		}

		switch name {
		case "fabric.mod.json":
			return parseFabricModJson(content), nil
		case "quilt.mod.json":
			return parseQuiltModJson(content), nil
		case "META-INF/neoforge.mods.toml":
			return parseModsToml(content, compat.NeoForge)
		case "META-INF/mods.toml":
			return parseModsToml(content, compat.Forge)
		case "mcmod.info":
			return parseMcModInfo(content), nil
		}
	}
	return ModJson{}, ErrNoModMetadata
}

func readZipFile(file *zip.File) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func parseFabricModJson(content []byte) ModJson {
	modJson := ModJson{
		Id:          gjson.GetBytes(content, "id").String(),
		Version:     cleanModVersion(gjson.GetBytes(content, "version").String()),
		Name:        gjson.GetBytes(content, "name").String(),
		Description: gjson.GetBytes(content, "description").String(),
		Loader:      compat.Fabric,
		GameVersion: firstVersion(gjson.GetBytes(content, "depends.minecraft")),
	}
	// Authors are either plain strings or {"name": ...} objects.
	for _, author := range gjson.GetBytes(content, "authors").Array() {
		if author.IsObject() {
			modJson.Authors = append(modJson.Authors, author.Get("name").String())
		} else {
			modJson.Authors = append(modJson.Authors, author.String())
		}
	}
	return modJson
}

func parseQuiltModJson(content []byte) ModJson {
	loader := gjson.GetBytes(content, "quilt_loader")
	modJson := ModJson{
		Id:          loader.Get("id").String(),
		Version:     cleanModVersion(loader.Get("version").String()),
		Name:        loader.Get("metadata.name").String(),
		Description: loader.Get("metadata.description").String(),
		Loader:      compat.Quilt,
		GameVersion: firstVersion(loader.Get(`depends.#(id=="minecraft").versions`)),
	}
	loader.Get("metadata.contributors").ForEach(func(name, _ gjson.Result) bool {
		modJson.Authors = append(modJson.Authors, name.String())
		return true
	})
	return modJson
}

type modsToml struct {
	Mods []struct {
		ModId       string      `toml:"modId"`
		Version     string      `toml:"version"`
		DisplayName string      `toml:"displayName"`
		Description string      `toml:"description"`
		Authors     interface{} `toml:"authors"`
	} `toml:"mods"`
	Dependencies map[string][]struct {
		ModId        string `toml:"modId"`
		VersionRange string `toml:"versionRange"`
	} `toml:"dependencies"`
}

func parseModsToml(content []byte, loader string) (ModJson, error) {
	var manifest modsToml
	if _, err := toml.Decode(string(content), &manifest); err != nil {
		return ModJson{}, fmt.Errorf("decode mods.toml: %w", err)
	}
	if len(manifest.Mods) == 0 {
		return ModJson{}, ErrNoModMetadata
	}

	mod := manifest.Mods[0]
	modJson := ModJson{
		Id:          mod.ModId,
		Version:     cleanModVersion(mod.Version),
		Name:        mod.DisplayName,
		Description: strings.TrimSpace(mod.Description),
		Loader:      loader,
	}

	switch authors := mod.Authors.(type) {
	case string:
		for _, a := range strings.Split(authors, ",") {
			if a = strings.TrimSpace(a); a != "" {
				modJson.Authors = append(modJson.Authors, a)
			}
		}
	case []interface{}:
		for _, a := range authors {
			modJson.Authors = append(modJson.Authors, fmt.Sprint(a))
		}
	}

	for _, dep := range manifest.Dependencies[mod.ModId] {
		if dep.ModId == "minecraft" {
			modJson.GameVersion = cleanVersionRange(dep.VersionRange)
		}
	}
	return modJson, nil
}

func parseMcModInfo(content []byte) ModJson {
	info := gjson.ParseBytes(content)
	if !info.IsArray() {
		info = info.Get("modList")
	}
	mod := info.Get("0")
	return ModJson{
		Id:          mod.Get("modid").String(),
		Version:     cleanModVersion(mod.Get("version").String()),
		Name:        mod.Get("name").String(),
		Description: mod.Get("description").String(),
		Loader:      compat.Forge,
		GameVersion: cleanVersionRange(mod.Get("mcversion").String()),
	}
}

// firstVersion takes a version predicate that may be a string or a list of
// strings and returns the lower bound of the first entry.
func firstVersion(r gjson.Result) string {
	if r.IsObject() {
		return ""
	}
	if r.IsArray() {
		arr := r.Array()
		if len(arr) == 0 {
			return ""
		}
		r = arr[0]
	}
	return cleanVersionRange(r.String())
}

// cleanVersionRange reduces a Maven range ("[1.20.1,1.21)") or a semver
// predicate (">=1.20", "~1.20.1", "1.20.x") to its lower-bound version. A
// wildcard or a range without a lower bound ("(,1.20.1]", "<1.21") yields "".
func cleanVersionRange(r string) string {
	r = strings.TrimSpace(r)
	if r == "" || r == "*" || strings.Contains(r, "${") {
		return ""
	}

	lower := strings.TrimSpace(strings.Split(strings.TrimLeft(r, "[("), ",")[0])
	if lower == "" || strings.HasPrefix(lower, "<") {
		return ""
	}
	lower = strings.TrimSpace(strings.Trim(lower, ">=~^])"))
	lower = strings.TrimSuffix(strings.TrimSuffix(lower, ".x"), ".*")
	if lower == "" || lower == "*" {
		return ""
	}
	return strings.Fields(lower)[0]
}

func cleanModVersion(v string) string {
	if strings.Contains(v, "${") {
		return compat.Unknown
	}
	return v
}
