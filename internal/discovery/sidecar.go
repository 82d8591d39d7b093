package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"yt-bulk-scheduler/internal/model"
)

var captionExtensions = []string{".srt", ".vtt"}

const coverExtension = ".png"

const defaultCaptionLanguage = "en"

// resolveSidecars looks next to the item for a caption track and a cover
// image sharing its base name. Absence of either is not an error.
func resolveSidecars(item *model.BatchItem) {
	dir := filepath.Dir(item.Path)
	base := strings.TrimSuffix(item.Identity, filepath.Ext(item.Identity))

	for _, ext := range captionExtensions {
		candidate := filepath.Join(dir, base+ext)
		if fileExists(candidate) {
			item.CaptionPath = candidate
			item.CaptionLanguage = defaultCaptionLanguage
			break
		}
		// A locale tag may sit between the base name and the caption
		// extension: clip.pt-BR.srt selects pt-BR subtitles for clip.mp4.
		matches, _ := filepath.Glob(filepath.Join(dir, base+".*"+ext))
		for _, m := range matches {
			tag := captionLanguageTag(filepath.Base(m), base, ext)
			if tag != "" {
				item.CaptionPath = m
				item.CaptionLanguage = tag
				break
			}
		}
		if item.CaptionPath != "" {
			break
		}
	}

	cover := filepath.Join(dir, base+coverExtension)
	if fileExists(cover) {
		item.CoverPath = cover
	}
}

// captionLanguageTag extracts the locale tag from a caption file name of the
// form <base>.<tag><ext>. Tags are 2-5 characters of letters and dashes.
func captionLanguageTag(name, base, ext string) string {
	middle := strings.TrimSuffix(strings.TrimPrefix(name, base+"."), ext)
	if middle == "" || len(middle) > 5 {
		return ""
	}
	for _, r := range middle {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isAlpha && r != '-' {
			return ""
		}
	}
	return middle
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
