package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrnavastar/modcheck/util"
	"github.com/zalando/go-keyring"
)

const (
	keyringService = "modcheck"
	keyringUser    = "dot_minecraft"
	stateFile      = "modcheck.json"
)

var ErrNotInitialized = errors.New("modcheck has not been set up, run init first")

type State struct {
	DotMinecraft  string
	WorkDir       string
	ActiveModpack string
	Modpacks      []util.Modpack
}

func dotMinecraft() (string, error) {
	dir, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotInitialized
	}
	return dir, err
}

func SaveAppState(state State) error {
	dir, err := dotMinecraft()
	if err != nil {
		return err
	}

	file, err := json.MarshalIndent(state, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "modcheck", stateFile), file, 0644)
}

func LoadAppState() (State, error) {
	dir, err := dotMinecraft()
	if err != nil {
		return State{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "modcheck", stateFile))
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}

	state.DotMinecraft = dir
	state.WorkDir = filepath.Join(dir, "modcheck")
	return state, nil
}
