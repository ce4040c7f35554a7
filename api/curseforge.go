package api

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
)

var CURSE_API_BASE = "https://api.curseforge.com/v1"

// CurseAPIKey is sent as x-api-key on every CurseForge request.
var CurseAPIKey string

const (
	curseMinecraftGameId = "432"
	curseModsClassId     = "6"

	curseRelationRequired     = 3
	curseRelationIncompatible = 5
)

type curseProject struct {
	Id         int
	Name       string
	Slug       string
	Categories []struct {
		Slug string
	}
}

type curseFile struct {
	Id           int
	DisplayName  string
	FileName     string
	FileDate     time.Time
	DownloadUrl  string
	GameVersions []string
	Dependencies []struct {
		ModId        int
		RelationType int
	}
}

func curseRequest() *resty.Request {
	return client.R().SetHeader("x-api-key", CurseAPIKey).SetHeader("Accept", "application/json")
}

func getCurseProject(slug string) (curseProject, error) {
	if id, err := strconv.Atoi(slug); err == nil {
		var result struct{ Data curseProject }
		resp, err := curseRequest().SetResult(&result).Get(CURSE_API_BASE + "/mods/" + strconv.Itoa(id))
		if err != nil {
			return curseProject{}, err
		}
		if resp.IsError() {
			return curseProject{}, fmt.Errorf("%w: %s", ErrFailedToGetMod, statusError(resp))
		}
		return result.Data, nil
	}

	var result struct{ Data []curseProject }
	resp, err := curseRequest().
		SetResult(&result).
		SetQueryParam("gameId", curseMinecraftGameId).
		SetQueryParam("classId", curseModsClassId).
		SetQueryParam("slug", slug).
		Get(CURSE_API_BASE + "/mods/search")
	if err != nil {
		return curseProject{}, err
	}
	if resp.IsError() {
		return curseProject{}, statusError(resp)
	}

	for _, p := range result.Data {
		if p.Slug == slug {
			return p, nil
		}
	}
	return curseProject{}, fmt.Errorf("%w: %s", ErrFailedToGetMod, slug)
}

// GetCurseModData resolves the best file of a CurseForge project for the
// given target. slug may be a project slug or a numeric project id.
func GetCurseModData(slug string, target compat.ModpackTarget) (util.ModData, error) {
	project, err := getCurseProject(slug)
	if err != nil {
		return util.ModData{}, err
	}

	var result struct{ Data []curseFile }
	resp, err := curseRequest().SetResult(&result).Get(CURSE_API_BASE + "/mods/" + strconv.Itoa(project.Id) + "/files")
	if err != nil {
		return util.ModData{}, err
	}
	if resp.IsError() {
		return util.ModData{}, statusError(resp)
	}

	files := result.Data
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].FileDate.After(files[j].FileDate)
	})

	var candidates []util.ModData
	for _, f := range files {
		candidates = append(candidates, curseModData(project, f, target))
	}

	modData, ok := pickBest(candidates, target)
	if !ok {
		return util.ModData{}, fmt.Errorf("%w: %s has no files", ErrFailedToGetMod, slug)
	}
	return modData, nil
}

func curseModData(project curseProject, file curseFile, target compat.ModpackTarget) util.ModData {
	modData := util.ModData{
		Platform:  "curse",
		Slug:      project.Slug,
		Name:      project.Name,
		ProjectId: strconv.Itoa(project.Id),
		Id:        strconv.Itoa(file.Id),
		Version:   file.DisplayName,
		Url:       file.DownloadUrl,
		Filename:  file.FileName,
	}
	for _, c := range project.Categories {
		modData.Categories = append(modData.Categories, c.Slug)
	}

	// CurseForge mixes loader names, environments and game versions in one list.
	var loaders, versions []string
	for _, tag := range file.GameVersions {
		switch {
		case compat.IsKnownLoader(tag):
			loaders = append(loaders, compat.NormalizeLoader(tag))
		case len(tag) > 0 && tag[0] >= '0' && tag[0] <= '9':
			versions = append(versions, tag)
		}
	}
	modData.GameVersions = preferVersion(versions, target.MinecraftVersion)
	if len(loaders) > 0 {
		modData.Loader = loaders[0]
		if util.Contains(loaders, compat.NormalizeLoader(target.Loader)) {
			modData.Loader = compat.NormalizeLoader(target.Loader)
		}
	}

	for _, dep := range file.Dependencies {
		d := util.Dependency{ProjectId: strconv.Itoa(dep.ModId), Name: strconv.Itoa(dep.ModId)}
		switch dep.RelationType {
		case curseRelationRequired:
			d.Required = true
			modData.Dependencies = append(modData.Dependencies, d)
		case curseRelationIncompatible:
			modData.Incompatible = append(modData.Incompatible, d)
		}
	}
	return modData
}
