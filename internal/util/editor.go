package util

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// EditorCommand picks $VISUAL, then $EDITOR, then the configured editor.
func EditorCommand(configured string) string {
	for _, name := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR"), configured} {
		if strings.TrimSpace(name) != "" {
			return name
		}
	}
	return "vi"
}

func OpenEditor(filePath string, editor string) error {
	parts := strings.Fields(editor)
	c := exec.Command(parts[0], append(parts[1:], filePath)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to open editor (%s): %w", filePath, err)
	}
	return nil
}
