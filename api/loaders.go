package api

import "strings"

var (
	FABRIC_META_BASE = "https://meta.fabricmc.net/v2"
	QUILT_META_BASE  = "https://meta.quiltmc.org/v3"
	MOJANG_MANIFEST  = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"
)

type LoaderVersion struct {
	Version string
	Stable  bool
}

func GetLatestFabricLoaderVersion() (string, error) {
	var loaderVersions []LoaderVersion
	resp, err := client.R().SetResult(&loaderVersions).Get(FABRIC_META_BASE + "/versions/loader")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", statusError(resp)
	}

	for _, loaderVersion := range loaderVersions {
		if loaderVersion.Stable {
			return loaderVersion.Version, nil
		}
	}
	return "", ErrNoStableVersion
}

// Quilt publishes betas with a "-beta" suffix and no stable flag.
func GetLatestQuiltLoaderVersion() (string, error) {
	var loaderVersions []Version
	resp, err := client.R().SetResult(&loaderVersions).Get(QUILT_META_BASE + "/versions/loader")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", statusError(resp)
	}

	for _, v := range loaderVersions {
		if !containsPreRelease(v.Version) {
			return v.Version, nil
		}
	}
	return "", ErrNoStableVersion
}

func containsPreRelease(version string) bool {
	for _, tag := range []string{"-beta", "-alpha", "-pre", "-rc"} {
		if strings.Contains(version, tag) {
			return true
		}
	}
	return false
}

type manifest struct {
	Latest struct {
		Release string
	}
	Versions []struct {
		Id   string
		Type string
	}
}

func getManifest() (manifest, error) {
	var m manifest
	resp, err := client.R().SetResult(&m).Get(MOJANG_MANIFEST)
	if err != nil {
		return manifest{}, err
	}
	if resp.IsError() {
		return manifest{}, statusError(resp)
	}
	return m, nil
}

func GetLatestMcVersion() (string, error) {
	m, err := getManifest()
	if err != nil {
		return "", err
	}
	return m.Latest.Release, nil
}

func IsMcVersion(version string) (bool, error) {
	m, err := getManifest()
	if err != nil {
		return false, err
	}
	for _, v := range m.Versions {
		if v.Id == version {
			return true, nil
		}
	}
	return false, nil
}
