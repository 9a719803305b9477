// Package summary aggregates reconciled change records into per-author,
// per-language and per-file statistics.
package summary

import (
	"path"
	"sort"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/gitledger/pkg/histlog"
)

// OtherLanguage buckets files enry cannot classify from the path alone.
const OtherLanguage = "Other"

// AuthorStats is the aggregated change volume of a single author.
type AuthorStats struct {
	Name      string `json:"name"      yaml:"name"`
	Commits   int    `json:"commits"   yaml:"commits"`
	Files     int    `json:"files"     yaml:"files"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
}

// LanguageStats is the aggregated change volume of a single language.
type LanguageStats struct {
	Language  string `json:"language"  yaml:"language"`
	Files     int    `json:"files"     yaml:"files"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
}

// FileStats is the aggregated churn of a single file path.
type FileStats struct {
	Path      string `json:"path"       yaml:"path"`
	Changes   int    `json:"changes"    yaml:"changes"`
	Additions int    `json:"additions"  yaml:"additions"`
	Deletions int    `json:"deletions"  yaml:"deletions"`
	LastTouch int64  `json:"last_touch" yaml:"last_touch"`
}

// Totals is the whole-history rollup.
type Totals struct {
	Records       int   `json:"records"        yaml:"records"`
	Commits       int   `json:"commits"        yaml:"commits"`
	Authors       int   `json:"authors"        yaml:"authors"`
	Files         int   `json:"files"          yaml:"files"`
	Additions     int   `json:"additions"      yaml:"additions"`
	Deletions     int   `json:"deletions"      yaml:"deletions"`
	BinaryChanges int   `json:"binary_changes" yaml:"binary_changes"`
	FirstCommit   int64 `json:"first_commit"   yaml:"first_commit"`
	LastCommit    int64 `json:"last_commit"    yaml:"last_commit"`
}

// Summary is the full aggregation of a reconciled change history.
type Summary struct {
	Authors   []AuthorStats   `json:"authors"   yaml:"authors"`
	Languages []LanguageStats `json:"languages" yaml:"languages"`
	Files     []FileStats     `json:"files"     yaml:"files"`
	Totals    Totals          `json:"totals"    yaml:"totals"`
}

// accumulator carries the per-key working state of a single Summarize pass.
type accumulator struct {
	authors       map[string]*AuthorStats
	authorCommits map[string]map[string]struct{}
	authorFiles   map[string]map[string]struct{}
	languages     map[string]*LanguageStats
	languageFiles map[string]map[string]struct{}
	files         map[string]*FileStats
	commits       map[string]struct{}
	totals        Totals
}

func newAccumulator() *accumulator {
	return &accumulator{
		authors:       make(map[string]*AuthorStats),
		authorCommits: make(map[string]map[string]struct{}),
		authorFiles:   make(map[string]map[string]struct{}),
		languages:     make(map[string]*LanguageStats),
		languageFiles: make(map[string]map[string]struct{}),
		files:         make(map[string]*FileStats),
		commits:       make(map[string]struct{}),
	}
}

// Summarize folds change records into a Summary in a single pass plus sorts.
// Authors are ordered by change volume, languages by file count and files by
// change count; ties break alphabetically so output is deterministic.
func Summarize(records []histlog.ChangeRecord) *Summary {
	acc := newAccumulator()

	for _, rec := range records {
		acc.add(rec)
	}

	return acc.finish()
}

func (acc *accumulator) add(rec histlog.ChangeRecord) {
	acc.totals.Records++
	acc.totals.Additions += rec.Additions
	acc.totals.Deletions += rec.Deletions

	if rec.Binary {
		acc.totals.BinaryChanges++
	}

	acc.commits[rec.Hash] = struct{}{}

	if acc.totals.FirstCommit == 0 || rec.Timestamp < acc.totals.FirstCommit {
		acc.totals.FirstCommit = rec.Timestamp
	}

	if rec.Timestamp > acc.totals.LastCommit {
		acc.totals.LastCommit = rec.Timestamp
	}

	acc.addAuthor(rec)
	acc.addLanguage(rec)
	acc.addFile(rec)
}

func (acc *accumulator) addAuthor(rec histlog.ChangeRecord) {
	author := acc.authors[rec.Author]
	if author == nil {
		author = &AuthorStats{Name: rec.Author}
		acc.authors[rec.Author] = author
		acc.authorCommits[rec.Author] = make(map[string]struct{})
		acc.authorFiles[rec.Author] = make(map[string]struct{})
	}

	author.Additions += rec.Additions
	author.Deletions += rec.Deletions
	acc.authorCommits[rec.Author][rec.Hash] = struct{}{}
	acc.authorFiles[rec.Author][rec.Path] = struct{}{}
}

func (acc *accumulator) addLanguage(rec histlog.ChangeRecord) {
	name := DetectLanguage(rec.Path)

	lang := acc.languages[name]
	if lang == nil {
		lang = &LanguageStats{Language: name}
		acc.languages[name] = lang
		acc.languageFiles[name] = make(map[string]struct{})
	}

	lang.Additions += rec.Additions
	lang.Deletions += rec.Deletions
	acc.languageFiles[name][rec.Path] = struct{}{}
}

func (acc *accumulator) addFile(rec histlog.ChangeRecord) {
	file := acc.files[rec.Path]
	if file == nil {
		file = &FileStats{Path: rec.Path}
		acc.files[rec.Path] = file
	}

	file.Changes++
	file.Additions += rec.Additions
	file.Deletions += rec.Deletions

	if rec.Timestamp > file.LastTouch {
		file.LastTouch = rec.Timestamp
	}
}

func (acc *accumulator) finish() *Summary {
	s := &Summary{
		Authors:   make([]AuthorStats, 0, len(acc.authors)),
		Languages: make([]LanguageStats, 0, len(acc.languages)),
		Files:     make([]FileStats, 0, len(acc.files)),
		Totals:    acc.totals,
	}

	for name, author := range acc.authors {
		author.Commits = len(acc.authorCommits[name])
		author.Files = len(acc.authorFiles[name])
		s.Authors = append(s.Authors, *author)
	}

	for name, lang := range acc.languages {
		lang.Files = len(acc.languageFiles[name])
		s.Languages = append(s.Languages, *lang)
	}

	for _, file := range acc.files {
		s.Files = append(s.Files, *file)
	}

	sort.Slice(s.Authors, func(i, j int) bool {
		vi := s.Authors[i].Additions + s.Authors[i].Deletions
		vj := s.Authors[j].Additions + s.Authors[j].Deletions
		if vi != vj {
			return vi > vj
		}

		return s.Authors[i].Name < s.Authors[j].Name
	})

	sort.Slice(s.Languages, func(i, j int) bool {
		if s.Languages[i].Files != s.Languages[j].Files {
			return s.Languages[i].Files > s.Languages[j].Files
		}

		return s.Languages[i].Language < s.Languages[j].Language
	})

	sort.Slice(s.Files, func(i, j int) bool {
		if s.Files[i].Changes != s.Files[j].Changes {
			return s.Files[i].Changes > s.Files[j].Changes
		}

		return s.Files[i].Path < s.Files[j].Path
	})

	s.Totals.Commits = len(acc.commits)
	s.Totals.Authors = len(acc.authors)
	s.Totals.Files = len(acc.files)

	return s
}

// DetectLanguage names the programming language of a file from its path
// alone. Paths enry cannot classify without content land in OtherLanguage.
func DetectLanguage(filePath string) string {
	base := path.Base(filePath)

	if lang, ok := enry.GetLanguageByFilename(base); ok {
		return lang
	}

	if lang, ok := enry.GetLanguageByExtension(base); ok {
		return lang
	}

	return OtherLanguage
}
