package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/util"
	"golang.org/x/mod/semver"
)

var client = resty.New()

var (
	ErrNoModFound        = errors.New("no mod found")
	ErrFailedToGetMod    = errors.New("failed to get mod data")
	ErrNoStableVersion   = errors.New("failed to find a stable version")
	ErrUnsupportedLoader = errors.New("loader has no version metadata")
)

type Version struct {
	Version string
	Stable  bool
	Url     string
}

func statusError(resp *resty.Response) error {
	return fmt.Errorf("%s %s: %s", resp.Request.Method, resp.Request.URL, resp.Status())
}

// DownloadFile streams url into path, creating parent directories. The body
// is written next to path first, so a failed download leaves an existing file
// untouched.
func DownloadFile(url string, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	part := path + ".part"
	resp, err := client.R().SetOutput(part).Get(url)
	if err != nil {
		os.Remove(part)
		return err
	}
	if resp.IsError() {
		os.Remove(part)
		return statusError(resp)
	}
	return os.Rename(part, path)
}

// pickBest returns the first candidate that is fully compatible with target,
// then the first that is compatible with a warning. When nothing fits, the
// first candidate is returned so callers can report why it is incompatible.
// Candidates are expected newest first.
func pickBest(candidates []util.ModData, target compat.ModpackTarget) (util.ModData, bool) {
	if len(candidates) == 0 {
		return util.ModData{}, false
	}

	relaxed := -1
	for i, candidate := range candidates {
		result := compat.Classify(target, candidate.Candidate())
		if result.Compatible && !result.Warning {
			return candidate, true
		}
		if result.Compatible && relaxed < 0 {
			relaxed = i
		}
	}
	if relaxed >= 0 {
		return candidates[relaxed], true
	}
	return candidates[0], true
}

// preferVersion orders game versions newest first, moving want to the front
// when it is listed.
func preferVersion(versions []string, want string) []string {
	ordered := make([]string, len(versions))
	copy(ordered, versions)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i] == want || ordered[j] == want {
			return ordered[i] == want && ordered[j] != want
		}
		return semver.Compare(canonical(ordered[i]), canonical(ordered[j])) > 0
	})
	return ordered
}

// canonical turns a Minecraft version into a semver string. Snapshots and
// other non-release ids become invalid and sort last.
func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}

// NewerVersion reports whether candidate is a newer release than current.
func NewerVersion(current, candidate string) bool {
	if current == "" {
		return candidate != ""
	}
	return semver.Compare(canonical(current), canonical(candidate)) < 0
}

// LatestLoaderVersion returns the newest stable loader release for loaders
// that publish meta endpoints.
func LatestLoaderVersion(loader string) (string, error) {
	switch loader {
	case "fabric":
		return GetLatestFabricLoaderVersion()
	case "quilt":
		return GetLatestQuiltLoaderVersion()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLoader, loader)
	}
}
