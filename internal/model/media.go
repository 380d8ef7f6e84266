package model

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MediaImage = "image"
	MediaLink  = "link"
)

type TaskMedia struct {
	Type      string `json:"type" yaml:"type" validate:"required,oneof=image link"`
	URL       string `json:"url" yaml:"url" validate:"required,url"`
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty" validate:"omitempty,url"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
}

var (
	youtubePattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	imagePattern   = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)
)

// DetectMedia classifies a pasted URL. An empty URL means no attachment.
func DetectMedia(url string) *TaskMedia {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}

	if m := youtubePattern.FindStringSubmatch(url); m != nil {
		return &TaskMedia{
			Type:      MediaLink,
			URL:       url,
			Thumbnail: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", m[1]),
			Title:     "YouTube Video",
		}
	}

	if imagePattern.MatchString(url) {
		return &TaskMedia{Type: MediaImage, URL: url, Thumbnail: url}
	}

	return &TaskMedia{Type: MediaLink, URL: url}
}
