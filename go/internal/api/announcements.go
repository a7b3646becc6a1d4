package api

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mcdev12/tourney/go/internal/storage"
	"google.golang.org/protobuf/types/known/structpb"
)

var soundExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
	".m4a": true,
}

func (s *Service) listAnnouncements(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = storage.DefaultAnnouncementLimit
	}
	if limit > maxAnnouncementLimit {
		limit = maxAnnouncementLimit
	}
	list, err := s.announcements.ListAnnouncements(ctx, limit)
	if err != nil {
		return nil, err
	}
	return map[string]any{"announcements": nonNil(list)}, nil
}

// listSounds reports the audio files available as cue references. A missing
// directory yields an empty list.
func (s *Service) listSounds(_ context.Context, _ *structpb.Struct) (any, error) {
	sounds := []string{}
	if s.soundsDir == "" {
		return map[string]any{"sounds": sounds}, nil
	}
	entries, err := os.ReadDir(s.soundsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"sounds": sounds}, nil
		}
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if soundExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			sounds = append(sounds, entry.Name())
		}
	}
	sort.Strings(sounds)
	return map[string]any{"sounds": sounds}, nil
}
