// Package locale picks the user interface language and the translation
// catalogs shipped for it.
package locale

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/specialistvlad/codehost/internal/ctxlog"
	"github.com/specialistvlad/codehost/internal/fsutil"
	"golang.org/x/text/language"
)

// Locale is the initialised language with its catalogs.
type Locale struct {
	Tag       language.Tag
	Canonical string
	Dir       string
	Catalogs  []string
}

// Getenv matches os.Getenv.
type Getenv func(string) string

// Init resolves the locale. It returns nil when localisation is disabled or
// no language can be determined; a missing catalog directory is not an
// error and leaves Catalogs empty.
func Init(ctx context.Context, dataDir string, s config.LocaleSection, getenv Getenv) (*Locale, error) {
	logger := ctxlog.DebugFromContext(ctx)
	if !s.Enable {
		logger.Debug("Localisation disabled.")
		return nil, nil
	}

	lang := s.Language
	if lang == "" {
		lang = FromEnvironment(getenv)
	}
	if lang == "" {
		logger.Debug("No language configured or found in the environment.")
		return nil, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return nil, fmt.Errorf("locale: unknown language %q: %w", lang, err)
	}

	l := &Locale{Tag: tag, Canonical: Canonical(tag)}
	l.Dir = filepath.Join(dataDir, "locale", l.Canonical)
	if !fsutil.DirExists(l.Dir) {
		logger.Debug("No catalogs for language.", "language", l.Canonical, "dir", l.Dir)
		return l, nil
	}

	files, err := fsutil.ListFilesBySuffix(l.Dir, ".mo")
	if err != nil {
		return nil, fmt.Errorf("locale: list catalogs: %w", err)
	}
	for _, f := range files {
		l.Catalogs = append(l.Catalogs, strings.TrimSuffix(filepath.Base(f), ".mo"))
	}
	logger.Debug("Locale initialised.", "language", l.Canonical, "catalogs", len(l.Catalogs))
	return l, nil
}

// Canonical renders tag as ll or ll_RR, the layout of the catalog tree.
func Canonical(tag language.Tag) string {
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.Exact {
		return base.String() + "_" + region.String()
	}
	return base.String()
}

// FromEnvironment returns the language named by LC_ALL, LC_MESSAGES or
// LANG, without encoding or modifier. The C and POSIX locales yield "".
func FromEnvironment(getenv Getenv) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := getenv(key)
		if v == "" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v == "C" || v == "POSIX" {
			return ""
		}
		return v
	}
	return ""
}
