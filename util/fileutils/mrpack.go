package fileutils

import (
	"archive/zip"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/mrnavastar/modcheck/compat"
)

const mrpackIndex = "modrinth.index.json"

var ErrNotMrpack = errors.New("not a modrinth modpack")

type PackFile struct {
	Path     string
	Url      string
	Sha1     string
	FileSize int64
	// Client / server side support, "required", "optional" or "unsupported".
	Client string
	Server string
}

type MrpackIndex struct {
	Name             string
	VersionId        string
	Summary          string
	MinecraftVersion string
	Loader           string
	LoaderVersion    string
	Files            []PackFile
}

// Keys of the mrpack dependencies object mapped to loader names.
var mrpackLoaders = map[string]string{
	"forge":         compat.Forge,
	"neoforge":      compat.NeoForge,
	"fabric-loader": compat.Fabric,
	"quilt-loader":  compat.Quilt,
}

func ReadMrpack(path string) (MrpackIndex, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return MrpackIndex{}, err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name == mrpackIndex {
			content, err := readZipFile(file)
			if err != nil {
				return MrpackIndex{}, err
			}
			return ParseMrpackIndex(content)
		}
	}
	return MrpackIndex{}, fmt.Errorf("%w: missing %s", ErrNotMrpack, mrpackIndex)
}

func ParseMrpackIndex(data []byte) (MrpackIndex, error) {
	game, err := jsonparser.GetString(data, "game")
	if err != nil || game != "minecraft" {
		return MrpackIndex{}, fmt.Errorf("%w: game is %q", ErrNotMrpack, game)
	}

	var index MrpackIndex
	index.Name, _ = jsonparser.GetString(data, "name")
	index.VersionId, _ = jsonparser.GetString(data, "versionId")
	index.Summary, _ = jsonparser.GetString(data, "summary")

	err = jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		name := string(key)
		if name == "minecraft" {
			index.MinecraftVersion = string(value)
		} else if loader, ok := mrpackLoaders[name]; ok {
			index.Loader = loader
			index.LoaderVersion = string(value)
		}
		return nil
	}, "dependencies")
	if err != nil {
		return MrpackIndex{}, fmt.Errorf("read dependencies: %w", err)
	}

	var fileErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if fileErr != nil {
			return
		}
		var file PackFile
		if file.Path, fileErr = jsonparser.GetString(value, "path"); fileErr != nil {
			fileErr = fmt.Errorf("file without path: %w", fileErr)
			return
		}
		file.Url, _ = jsonparser.GetString(value, "downloads", "[0]")
		file.Sha1, _ = jsonparser.GetString(value, "hashes", "sha1")
		file.FileSize, _ = jsonparser.GetInt(value, "fileSize")
		file.Client, _ = jsonparser.GetString(value, "env", "client")
		file.Server, _ = jsonparser.GetString(value, "env", "server")
		index.Files = append(index.Files, file)
	}, "files")
	if err != nil {
		return MrpackIndex{}, fmt.Errorf("read files: %w", err)
	}
	if fileErr != nil {
		return MrpackIndex{}, fileErr
	}
	return index, nil
}
