/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nakachan-ing/daytask/internal/model"
	"github.com/nakachan-ing/daytask/internal/store"
	"github.com/spf13/cobra"
)

const saveAndExit = "Save & Exit"

type Model struct {
	cursor    int
	fields    []string
	config    model.Config
	textInput textinput.Model
	editMode  bool
	saved     bool
	err       error
	save      func(model.Config) error
}

func newModel(config model.Config, save func(model.Config) error) *Model {
	return &Model{
		cursor:    0,
		fields:    generateFieldList(),
		config:    config,
		textInput: textinput.New(),
		editMode:  false,
		save:      save,
	}
}

func generateFieldList() []string {
	return []string{
		"DataDir", "Timezone", "Editor",
		"Storage.Backend", "Storage.Redis.Addr", "Storage.Redis.Password",
		"Storage.Redis.DB", "Storage.Redis.Prefix",
		"Log.Level", "Log.Format", "Log.Output", "Log.Filename",
		saveAndExit,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editMode {
		switch key.String() {
		case "enter":
			m.err = setFieldValue(&m.config, m.fields[m.cursor], m.textInput.Value())
			m.editMode = false
			m.textInput.Blur()
		case "esc":
			m.editMode = false
			m.textInput.Blur()
		default:
			m.textInput, _ = m.textInput.Update(msg)
		}
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case "enter":
		if m.fields[m.cursor] == saveAndExit {
			if m.err = m.save(m.config); m.err != nil {
				return m, nil
			}
			m.saved = true
			return m, tea.Quit
		}
		m.editMode = true
		m.textInput.SetValue(getFieldValue(m.config, m.fields[m.cursor]))
		m.textInput.Focus()
	}
	return m, nil
}

func (m *Model) View() string {
	var s strings.Builder
	s.WriteString("📄 Configure daytask\n\n")

	for i, field := range m.fields {
		cursor := "  "
		if m.cursor == i {
			cursor = "👉"
		}
		if field == saveAndExit {
			s.WriteString(fmt.Sprintf("\n%s %s\n", cursor, field))
			continue
		}
		s.WriteString(fmt.Sprintf("%s %s: %s\n", cursor, field, getFieldValue(m.config, field)))
	}

	if m.err != nil {
		s.WriteString("\n⚠️  " + m.err.Error() + "\n")
	}

	if m.editMode {
		s.WriteString("\n✏️  Editing: " + m.fields[m.cursor] + "\n")
		s.WriteString(m.textInput.View() + "\n")
		s.WriteString("(Enter to save, ESC to cancel)\n")
	} else {
		s.WriteString("\n↑/↓ to move, Enter to edit, q to quit\n")
	}

	return s.String()
}

func getFieldValue(config model.Config, field string) string {
	switch field {
	case "DataDir":
		return config.DataDir
	case "Timezone":
		return config.Timezone
	case "Editor":
		return config.Editor
	case "Storage.Backend":
		return config.Storage.Backend
	case "Storage.Redis.Addr":
		return config.Storage.Redis.Addr
	case "Storage.Redis.Password":
		if config.Storage.Redis.Password == "" {
			return ""
		}
		return "********"
	case "Storage.Redis.DB":
		return strconv.Itoa(config.Storage.Redis.DB)
	case "Storage.Redis.Prefix":
		return config.Storage.Redis.Prefix
	case "Log.Level":
		return config.Log.Level
	case "Log.Format":
		return config.Log.Format
	case "Log.Output":
		return config.Log.Output
	case "Log.Filename":
		return config.Log.Filename
	default:
		return "UNKNOWN"
	}
}

func setFieldValue(config *model.Config, field, newValue string) error {
	newValue = strings.TrimSpace(newValue)

	switch field {
	case "DataDir":
		config.DataDir = newValue
	case "Timezone":
		config.Timezone = newValue
	case "Editor":
		config.Editor = newValue
	case "Storage.Backend":
		switch newValue {
		case "file", "redis", "memory":
			config.Storage.Backend = newValue
		default:
			return fmt.Errorf("backend must be file, redis or memory")
		}
	case "Storage.Redis.Addr":
		config.Storage.Redis.Addr = newValue
	case "Storage.Redis.Password":
		if newValue != "********" {
			config.Storage.Redis.Password = newValue
		}
	case "Storage.Redis.DB":
		newInt, err := strconv.Atoi(newValue)
		if err != nil || newInt < 0 {
			return fmt.Errorf("redis db must be a non-negative number")
		}
		config.Storage.Redis.DB = newInt
	case "Storage.Redis.Prefix":
		config.Storage.Redis.Prefix = newValue
	case "Log.Level":
		config.Log.Level = newValue
	case "Log.Format":
		config.Log.Format = newValue
	case "Log.Output":
		config.Log.Output = newValue
	case "Log.Filename":
		config.Log.Filename = newValue
	default:
		return fmt.Errorf("unknown field %s", field)
	}
	return nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure config.yaml interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		save := store.SaveConfig
		if configPathFlag != "" {
			save = func(c model.Config) error { return store.SaveConfigFile(configPathFlag, c) }
		}

		m := newModel(*config, save)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		if m.saved {
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Config saved.")
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPathFlag
		if path == "" {
			p, err := store.GetConfigPath()
			if err != nil {
				return fmt.Errorf("failed to get config path: %w", err)
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
