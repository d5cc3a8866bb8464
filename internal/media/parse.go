package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Filename parsing & classification utilities.
//
// Season identity comes from directory names and episode identity from file
// names. Both are kept as strings: the canonical output embeds exactly the
// digits found (season) or a float-normalized token (episode).
var (
	// seasonWordRe matches "Season 2", "season02", "SEASON  11".
	seasonWordRe = regexp.MustCompile(`(?i)Season\s*(\d+)`)

	// seasonLetterRe matches "S2", "s03" anywhere in a name.
	seasonLetterRe = regexp.MustCompile(`(?i)S(\d+)`)

	// episodeRe is evaluated as one pattern; the first non-empty group wins.
	// The bare number alternative requires a fractional part so that the
	// season digits of "S03E05" are never taken for the episode.
	episodeRe = regexp.MustCompile(`(?i)E(\d+(?:\.\d+)?)|Ep(\d+(?:\.\d+)?)|Episode(\d+(?:\.\d+)?)|(\d+\.\d+)`)

	// numericTokenRe gates float normalization to plain integers and decimals.
	numericTokenRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

	// canonicalRe matches names already in S<season>E<episode> form, including
	// the _<n> suffix added on collisions.
	canonicalRe = regexp.MustCompile(`(?i)^S\d+E\d+(\.\d+)?(_\d+)?\.(mkv|mp4)$`)

	// videoRe matches the two containers handled by the renamer.
	videoRe = regexp.MustCompile(`(?i)\.(mkv|mp4)$`)
)

const (
	// CompletedDirName is the reserved output directory under the source root.
	CompletedDirName = "Completed"
	// StagingDirName is the transient transcode output directory under the storage location.
	StagingDirName = "CONVERTED_MKV"
	// DefaultSeason is used when a directory carries no season token.
	DefaultSeason = "1"

	// SourceExt is the container renamed and remuxed by the tool.
	SourceExt = ".mkv"
	// TargetExt is the container produced by the remux pass.
	TargetExt = ".mp4"
	// PlaylistExt marks companion playlist artifacts.
	PlaylistExt = ".m3u8"
)

// ExtractSeason returns the season digits found in a directory name. The
// "Season <n>" form is preferred over the short "S<n>" form.
func ExtractSeason(dirName string) (season string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			season, ok = "", false
		}
	}()

	for _, re := range []*regexp.Regexp{seasonWordRe, seasonLetterRe} {
		if m := re.FindStringSubmatch(dirName); len(m) >= 2 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// ExtractEpisode returns the episode token for a file name without extension.
// When no episode pattern matches, the whole stem is the token. ok is false
// only when no token can be produced at all.
func ExtractEpisode(stem string) (string, bool) {
	token := stem
	if m := episodeRe.FindStringSubmatch(stem); m != nil {
		for _, group := range m[1:] {
			if group != "" {
				token = group
				break
			}
		}
	}
	if token == "" {
		return "", false
	}
	return NormalizeEpisode(token), true
}

// NormalizeEpisode strips leading zeros and trailing zero fractions from a
// numeric token ("07" -> "7", "5.50" -> "5.5", "5.0" -> "5"). Tokens that are
// not plain integers or decimals are returned unchanged.
func NormalizeEpisode(token string) string {
	if !numericTokenRe.MatchString(token) {
		return token
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return token
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// CanonicalName builds S<season>E<episode><ext>.
func CanonicalName(season, episode, ext string) string {
	return "S" + season + "E" + episode + ext
}

// IsCanonical reports whether a file name is already in canonical form.
func IsCanonical(name string) bool {
	return canonicalRe.MatchString(name)
}

// IsVideo reports whether name has one of the recognized containers.
func IsVideo(name string) bool {
	return videoRe.MatchString(name)
}

// IsRenameTarget reports whether name is in the container remuxed by the tool.
func IsRenameTarget(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SourceExt)
}

// IsPlaylist reports whether name carries the companion playlist extension.
func IsPlaylist(name string) bool {
	return strings.EqualFold(filepath.Ext(name), PlaylistExt)
}

// IsReserved reports whether a directory name is the reserved output directory.
func IsReserved(name string) bool {
	return strings.EqualFold(name, CompletedDirName)
}

// Stem returns name without its final extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// StemKey normalizes a stem for companion matching. Names written by some
// filesystems arrive decomposed, so both sides are compared in NFC.
func StemKey(stem string) string {
	return norm.NFC.String(stem)
}
