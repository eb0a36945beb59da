package transcript

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"

	"github.com/dgnsrekt/narrator/internal/offset"
)

const transcriptSuffix = ".jsonl"

// Tailer polls a directory tree of append-only JSONL transcripts and emits
// entries appended since the previous cycle. Files discovered for the first
// time are initialized to their current end, so only content written while
// the tailer is running is ever emitted.
type Tailer struct {
	dir      string
	offsets  *offset.Tracker
	interval time.Duration

	// activeOnly restricts each cycle to the most-recently-modified
	// transcript, for setups where many session files grow at once.
	activeOnly bool

	log *log.Logger
}

// Options configures a Tailer.
type Options struct {
	// Interval is the poll period. Filesystem events can wake the tailer
	// earlier; the ticker is the correctness backstop.
	Interval time.Duration

	// ActiveOnly reads only the most-recently-modified transcript per cycle.
	ActiveOnly bool

	Logger *log.Logger
}

// NewTailer creates a tailer over dir using the given offset tracker.
func NewTailer(dir string, tracker *offset.Tracker, opts Options) *Tailer {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Tailer{
		dir:        dir,
		offsets:    tracker,
		interval:   opts.Interval,
		activeOnly: opts.ActiveOnly,
		log:        opts.Logger.With("component", "tailer"),
	}
}

// candidate is a transcript file present during one cycle.
type candidate struct {
	path    string
	size    int64
	modTime time.Time
}

// Scan performs one poll cycle and returns entries appended since the last
// cycle, in file order. Files that cannot be listed or opened are skipped
// for this cycle and retried on the next one.
func (t *Tailer) Scan() []Entry {
	files := t.listFiles()
	if len(files) == 0 {
		return nil
	}

	// Files seen for the first time start at their current end. A file
	// discovered mid-run is assumed to have no backlog worth narrating.
	for _, f := range files {
		if t.offsets.Tracked(f.path) {
			continue
		}
		if err := t.offsets.Initialize(f.path, f.size); err != nil {
			t.log.Warn("could not track transcript", "path", f.path, "error", err)
			continue
		}
		t.log.Debug("tracking new transcript", "path", f.path, "size", humanize.Bytes(uint64(f.size)))
	}

	if t.activeOnly {
		files = []candidate{selectActive(files)}
	}

	var entries []Entry
	for _, f := range files {
		entries = append(entries, t.readNew(f)...)
	}
	return entries
}

// Run drives Scan until the context ends, invoking emit for every cycle that
// produced entries. Write and create events from the watched directory wake
// the next scan early; polling semantics are otherwise unchanged.
func (t *Tailer) Run(ctx context.Context, emit func([]Entry)) error {
	// Initial scan establishes offsets for everything already on disk.
	t.Scan()
	t.log.Info("watching transcripts", "dir", t.dir, "files", t.offsets.Len(), "interval", t.interval)

	events := t.watch(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-events:
		}

		if entries := t.Scan(); len(entries) > 0 {
			emit(entries)
		}
	}
}

// watch wires fsnotify into the poll loop. Failure to watch is never fatal;
// the ticker alone is enough.
func (t *Tailer) watch(ctx context.Context) <-chan struct{} {
	events := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.log.Warn("fsnotify unavailable, relying on polling only", "error", err)
		return events
	}

	if err := watcher.Add(t.dir); err != nil {
		t.log.Warn("could not watch transcript dir", "dir", t.dir, "error", err)
	}
	// fsnotify watches are not recursive; cover existing subdirectories too.
	_ = filepath.WalkDir(t.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == t.dir {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			t.log.Debug("could not watch subdir", "dir", path, "error", err)
		}
		return nil
	})

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				t.log.Debug("fsnotify error", "error", err)
			}
		}
	}()

	return events
}

// listFiles walks the watched directory collecting transcript files. Listing
// errors skip the offending path for this cycle.
func (t *Tailer) listFiles() []candidate {
	var files []candidate
	err := filepath.WalkDir(t.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			t.log.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, transcriptSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, candidate{path: path, size: info.Size(), modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		t.log.Warn("could not list transcript dir", "dir", t.dir, "error", err)
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files
}

// selectActive picks the most-recently-modified transcript. Modification-time
// ties break lexicographically on path so the choice stays reproducible.
func selectActive(files []candidate) candidate {
	active := files[0]
	for _, f := range files[1:] {
		if f.modTime.After(active.modTime) {
			active = f
		}
	}
	return active
}

// readNew reads the bytes appended past the tracked offset and parses every
// complete line. A trailing partial line is left unconsumed: the offset only
// advances past bytes that belong to terminated lines, so a line written
// mid-poll is picked up whole on a later cycle.
func (t *Tailer) readNew(f candidate) []Entry {
	cur := t.offsets.Current(f.path)
	if f.size <= cur {
		return nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		// Permissions or a race with deletion; retried next cycle.
		t.log.Debug("could not open transcript", "path", f.path, "error", err)
		return nil
	}
	defer file.Close()

	if _, err := file.Seek(cur, io.SeekStart); err != nil {
		t.log.Debug("could not seek transcript", "path", f.path, "offset", cur, "error", err)
		return nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		t.log.Debug("could not read transcript", "path", f.path, "error", err)
		return nil
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil
	}
	consumed := data[:end+1]

	var entries []Entry
	for _, line := range bytes.Split(consumed, []byte{'\n'}) {
		if entry, ok := ParseEntry(line); ok {
			entries = append(entries, entry)
		}
	}

	// Malformed lines still count as consumed: the offset advances past
	// every terminated line regardless of parse outcome.
	if err := t.offsets.Advance(f.path, cur+int64(len(consumed))); err != nil {
		t.log.Error("offset bookkeeping failed", "path", f.path, "error", err)
		return nil
	}

	if len(entries) > 0 {
		t.log.Debug("read transcript delta",
			"path", filepath.Base(f.path),
			"bytes", humanize.Bytes(uint64(len(consumed))),
			"entries", len(entries))
	}
	return entries
}
