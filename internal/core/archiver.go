package core

import (
	"io"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/valter-silva-au/archivist/pkg/models"
)

// Builder groups records into a year (and optionally month) archive.
type Builder struct {
	opts      models.ArchiveOptions
	selector  *Selector
	extractor *Extractor
	months    [12]string
	logger    *log.Logger
}

// datedRecord pairs an archived record with its representative date.
type datedRecord struct {
	record *models.Record
	at     time.Time
}

// NewBuilder validates opts and prepares a Builder. logger may be nil.
func NewBuilder(opts models.ArchiveOptions, logger *log.Logger) (*Builder, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	sel, err := NewSelector(opts.Collections)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{
		opts:      opts,
		selector:  sel,
		extractor: NewExtractor(opts.DateFields),
		months:    MonthNames(opts.Locale),
		logger:    logger,
	}, nil
}

// Options returns the options the Builder was created with.
func (b *Builder) Options() models.ArchiveOptions {
	return b.opts
}

// Build produces the archive for files. Input records are never modified;
// the archive holds copies annotated with their FileName.
func (b *Builder) Build(files models.Files) (models.Archive, models.BuildResult) {
	var res models.BuildResult

	selected := b.selector.Select(files)
	res.Selected = len(selected)

	buckets := b.bucketByYear(selected, &res)
	for year := range buckets {
		sortPosts(buckets[year], b.opts.PostSortOrder)
	}

	archive := sortYears(buckets, b.opts.ListSortOrder)
	if b.opts.GroupByMonth {
		for i := range archive {
			archive[i].Months = groupMonths(buckets[archive[i].Year], b.months, b.opts.MonthSortOrder)
		}
	}

	res.Years = len(archive)
	b.logger.Debug("archive built",
		"selected", res.Selected,
		"archived", res.Archived,
		"skipped", res.Skipped,
		"unparseable", res.Unparseable,
		"years", res.Years,
	)
	return archive, res
}

func (b *Builder) bucketByYear(records []*models.Record, res *models.BuildResult) map[int][]datedRecord {
	buckets := make(map[int][]datedRecord)
	for _, r := range records {
		at, found, err := b.extractor.Resolve(r)
		if !found {
			res.Skipped++
			b.logger.Debug("record has no date field", "key", r.Key)
			continue
		}
		if err != nil {
			res.Unparseable++
			b.logger.Warn("skipping record with unparseable date", "key", r.Key, "err", err)
			continue
		}
		year := at.Year()
		buckets[year] = append(buckets[year], datedRecord{record: r.Annotated(), at: at})
		res.Archived++
	}
	return buckets
}

func sortPosts(posts []datedRecord, order models.SortOrder) {
	sort.SliceStable(posts, func(i, j int) bool {
		if order == models.SortDesc {
			return posts[i].at.After(posts[j].at)
		}
		return posts[i].at.Before(posts[j].at)
	})
}

func sortYears(buckets map[int][]datedRecord, order models.SortOrder) models.Archive {
	archive := make(models.Archive, 0, len(buckets))
	for year, posts := range buckets {
		data := make([]*models.Record, len(posts))
		for i, p := range posts {
			data[i] = p.record
		}
		archive = append(archive, models.ArchiveEntry{Year: year, Data: data})
	}
	sort.Slice(archive, func(i, j int) bool {
		if order == models.SortDesc {
			return archive[i].Year > archive[j].Year
		}
		return archive[i].Year < archive[j].Year
	})
	return archive
}

// groupMonths buckets an already sorted year by calendar month. Records keep
// their relative order within each month.
func groupMonths(posts []datedRecord, names [12]string, order models.SortOrder) []models.MonthGroup {
	byMonth := make(map[time.Month][]*models.Record)
	for _, p := range posts {
		m := p.at.Month()
		byMonth[m] = append(byMonth[m], p.record)
	}

	groups := make([]models.MonthGroup, 0, len(byMonth))
	for m := time.January; m <= time.December; m++ {
		data, ok := byMonth[m]
		if !ok {
			continue
		}
		groups = append(groups, models.MonthGroup{Name: names[m-1], Month: m, Data: data})
	}
	if order == models.SortDesc {
		slices.Reverse(groups)
	}
	return groups
}
