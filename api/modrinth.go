package api

import (
	"fmt"
	"net/http"

	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
)

var MODRINTH_API_BASE = "https://api.modrinth.com/v2"

type modrinthProject struct {
	Id         string
	Slug       string
	Title      string
	Categories []string
}

type modrinthVersion struct {
	Id             string
	Version_number string
	Game_versions  []string
	Loaders        []string
	Files          []struct {
		Url      string
		Filename string
		Primary  bool
	}
	Dependencies []struct {
		Project_id      string
		Dependency_type string
	}
}

func (v modrinthVersion) primaryFile() (url string, filename string, ok bool) {
	if len(v.Files) == 0 {
		return "", "", false
	}
	for _, f := range v.Files {
		if f.Primary {
			return f.Url, f.Filename, true
		}
	}
	return v.Files[0].Url, v.Files[0].Filename, true
}

// loaderFor picks which of the version's loaders is reported for a modpack
// using packLoader.
func (v modrinthVersion) loaderFor(packLoader string) string {
	if len(v.Loaders) == 0 {
		return ""
	}
	for _, l := range v.Loaders {
		if compat.NormalizeLoader(l) == compat.NormalizeLoader(packLoader) {
			return compat.NormalizeLoader(l)
		}
	}
	return compat.NormalizeLoader(v.Loaders[0])
}

// GetModrinthModData resolves the best version of a Modrinth project for the
// given target.
func GetModrinthModData(slug string, target compat.ModpackTarget) (util.ModData, error) {
	var project modrinthProject
	var versions []modrinthVersion

	resp, err := client.R().SetResult(&project).SetPathParam("slug", slug).Get(MODRINTH_API_BASE + "/project/{slug}")
	if err != nil {
		return util.ModData{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return util.ModData{}, fmt.Errorf("%w: %s", ErrFailedToGetMod, slug)
	}
	if resp.IsError() {
		return util.ModData{}, statusError(resp)
	}

	resp, err = client.R().SetResult(&versions).SetPathParam("slug", slug).Get(MODRINTH_API_BASE + "/project/{slug}/version")
	if err != nil {
		return util.ModData{}, err
	}
	if resp.IsError() {
		return util.ModData{}, statusError(resp)
	}

	var candidates []util.ModData
	for _, modVersion := range versions {
		if modData, ok := modrinthModData(project, modVersion, target); ok {
			candidates = append(candidates, modData)
		}
	}

	modData, ok := pickBest(candidates, target)
	if !ok {
		return util.ModData{}, fmt.Errorf("%w: %s has no downloadable versions", ErrFailedToGetMod, slug)
	}
	return modData, nil
}

func modrinthModData(project modrinthProject, modVersion modrinthVersion, target compat.ModpackTarget) (util.ModData, bool) {
	url, filename, ok := modVersion.primaryFile()
	if !ok {
		return util.ModData{}, false
	}

	modData := util.ModData{
		Platform:     "modrinth",
		Slug:         project.Slug,
		Name:         project.Title,
		ProjectId:    project.Id,
		Id:           modVersion.Id,
		Version:      modVersion.Version_number,
		Url:          url,
		Filename:     filename,
		Loader:       modVersion.loaderFor(target.Loader),
		GameVersions: preferVersion(modVersion.Game_versions, target.MinecraftVersion),
		Categories:   project.Categories,
	}

	for _, dep := range modVersion.Dependencies {
		if dep.Project_id == "" {
			continue
		}
		d := util.Dependency{ProjectId: dep.Project_id, Name: dep.Project_id}
		switch dep.Dependency_type {
		case "required":
			d.Required = true
			modData.Dependencies = append(modData.Dependencies, d)
		case "incompatible":
			modData.Incompatible = append(modData.Incompatible, d)
		}
	}
	return modData, true
}

type searchResult struct {
	Hits []struct {
		Slug       string
		Categories []string
	}
}

// SearchModrinth returns the slug of the best search hit for query that
// supports loader. An empty loader accepts any hit.
func SearchModrinth(query string, loader string) (string, error) {
	var search searchResult
	resp, err := client.R().SetResult(&search).SetQueryParam("query", query).Get(MODRINTH_API_BASE + "/search")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", statusError(resp)
	}

	for _, hit := range search.Hits {
		if loader == "" || util.ContainsFold(hit.Categories, loader) {
			return hit.Slug, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoModFound, query)
}
