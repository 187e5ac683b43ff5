// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/jeranaias/opencoder/internal/model"
	"github.com/jeranaias/opencoder/internal/session"
)

const (
	setUsage         = "/set <key> [value]"
	noModelsMessage  = "No models available"
	invalidArgument  = "Invalid argument"
	unchangedMessage = "Nothing changed"
)

// errNoValue is wrapped in InvalidValueError when a value is required but
// none could be read.
var errNoValue = errors.New("no value given")

// HandleSet changes one setting. Without a value it asks for one: the model
// is picked from the server's catalog, numbers are typed in.
func HandleSet(ctx context.Context, st *session.State, args string) (string, error) {
	key, value := splitKeyValue(args)

	if !isSettingKey(key) {
		return setHelp(), nil
	}

	if key == model.KeyModel {
		return setModel(ctx, st, value)
	}

	if value == "" {
		var err error
		value, err = askValue(st, key)
		if errors.Is(err, session.ErrSelectionCancelled) {
			return unchangedMessage, nil
		}
		if err != nil {
			return "", err
		}
	}

	if key == model.KeyTopK {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return "", &InvalidValueError{Key: key, Value: value, Err: err}
		}
		st.Settings.TopK = n
	} else {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return "", &InvalidValueError{Key: key, Value: value, Err: err}
		}
		*st.Settings.FloatField(key) = f
	}

	shown, _ := st.Settings.Value(key)
	st.Logger.Info("setting changed", zap.String("key", key), zap.String("value", shown))
	return fmt.Sprintf("Set %s to %s", key, shown), nil
}

// splitKeyValue splits args at the first whitespace after the key. The
// value keeps its inner whitespace.
func splitKeyValue(args string) (key, value string) {
	args = strings.TrimSpace(args)
	i := strings.IndexFunc(args, unicode.IsSpace)
	if i < 0 {
		return args, ""
	}
	return args[:i], strings.TrimSpace(args[i:])
}

// setModel sets the model by name or by picking from the catalog.
func setModel(ctx context.Context, st *session.State, name string) (string, error) {
	if name == "" {
		list, err := st.Client.ListModels(ctx)
		if err != nil {
			return "", err
		}
		ids := list.IDs()
		if len(ids) == 0 {
			st.Logger.Warn("no models available")
			return noModelsMessage, nil
		}
		if st.Prompter == nil {
			return "", &InvalidValueError{Key: model.KeyModel, Err: errNoValue}
		}

		name, err = st.Prompter.Select("Select a model", ids)
		if errors.Is(err, session.ErrSelectionCancelled) {
			return unchangedMessage, nil
		}
		if err != nil {
			return "", err
		}
	}

	st.Settings.Name = name
	st.Logger.Info("model changed", zap.String("model", name))
	return fmt.Sprintf("Set model to %s", name), nil
}

// askValue reads a value for key from the prompter.
func askValue(st *session.State, key string) (string, error) {
	if st.Prompter == nil {
		return "", &InvalidValueError{Key: key, Err: errNoValue}
	}
	current, _ := st.Settings.Value(key)
	value, err := st.Prompter.Input(fmt.Sprintf("%s (current %s)", key, current))
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &InvalidValueError{Key: key, Err: errNoValue}
	}
	return value, nil
}

func isSettingKey(key string) bool {
	for _, k := range model.SettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// setHelp is printed for a missing or unknown key.
func setHelp() string {
	return fmt.Sprintf("%s\nUsage: %s\nKeys: %s", invalidArgument, setUsage, strings.Join(model.SettingKeys, ", "))
}
