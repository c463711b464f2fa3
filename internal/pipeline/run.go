// Package pipeline loads IR files, runs a pass pipeline over each of them in
// parallel and renders the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"offload/internal/diag"
	"offload/internal/ir"
	"offload/internal/irstore"
	"offload/internal/irtext"
	"offload/internal/observ"
	"offload/internal/pass"
	"offload/internal/source"
	"offload/internal/trace"
)

// TextExt is the extension of text IR files.
const TextExt = ".ir"

// Request configures one Run.
type Request struct {
	Files      []string
	Passes     []string
	Registry   *pass.Registry
	VerifyEach bool
	// AttachDevices, when non-nil, replaces the device list of every module.
	AttachDevices  []string
	Emit           EmitFormat
	Jobs           int
	MaxDiagnostics int
	Progress       ProgressSink
	Timer          *observ.Timer
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Module  *ir.Module
	Output  []byte
	Notes   []string
	Timings Timings
	Err     error
}

// Failed reports whether the file could not be processed.
func (r *FileResult) Failed() bool {
	return r.Err != nil || (r.Bag != nil && r.Bag.HasErrors())
}

// Result collects the outcome of a Run.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
}

// Failed returns the number of files that failed.
func (r Result) Failed() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].Failed() {
			n++
		}
	}
	return n
}

// summarizer is implemented by passes that can describe their last run.
type summarizer interface {
	Summary() string
}

// Run processes every file of req. Per-file problems land in the file's
// diagnostics; the returned error is reserved for bad requests and
// cancellation.
func Run(ctx context.Context, req Request) (Result, error) {
	if req.Registry == nil {
		req.Registry = pass.Default()
	}
	// Unknown pass names fail the whole request before any file is touched.
	if _, err := req.Registry.Pipeline(req.Passes); err != nil {
		return Result{}, err
	}
	if req.Emit == "" {
		req.Emit = EmitText
	}
	if req.MaxDiagnostics <= 0 {
		req.MaxDiagnostics = 100
	}

	fileSet := source.NewFileSet()
	res := Result{FileSet: fileSet, Files: make([]FileResult, len(req.Files))}
	if len(req.Files) == 0 {
		return res, nil
	}

	// FileSet is not safe for concurrent use: load everything up front.
	loadErrors := make(map[int]error)
	for i, path := range req.Files {
		res.Files[i] = FileResult{Path: path, Bag: diag.NewBag(req.MaxDiagnostics)}
		emit(req.Progress, Event{File: path, Stage: StageParse, Status: StatusQueued})
		if isSnapshot(path) {
			res.Files[i].FileID = fileSet.AddVirtual(path, nil)
			continue
		}
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			id = fileSet.AddVirtual(path, nil)
		}
		res.Files[i].FileID = id
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fr := &res.Files[i]
			if err, failed := loadErrors[i]; failed {
				fr.Err = err
				fr.Bag.Add(diag.NewError(diag.IOLoadFileError, emptySpan(fr.FileID), "failed to load file: "+err.Error()))
				emit(req.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusError, Err: err})
				return nil
			}
			return processFile(gctx, req, fileSet.Get(fr.FileID), fr)
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

func processFile(ctx context.Context, req Request, file *source.File, fr *FileResult) error {
	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "file "+fr.Path)
	status := "ok"
	defer func() { span.End(status) }()

	fail := func(stage Stage, code diag.Code, err error) {
		status = "failed"
		fr.Err = err
		fr.Bag.Add(diag.NewError(code, emptySpan(fr.FileID), err.Error()))
		emit(req.Progress, Event{File: fr.Path, Stage: stage, Status: StatusError, Err: err})
	}

	// parse
	stageStart := time.Now()
	emit(req.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusWorking})
	phase := req.Timer.Begin("parse " + fr.Path)
	m, err := load(file, fr)
	req.Timer.End(phase, "")
	fr.Timings.Set(StageParse, time.Since(stageStart))
	if err != nil {
		fail(StageParse, diag.IODecodeError, err)
		return nil
	}
	if m == nil {
		status = "failed"
		fr.Err = errParse
		emit(req.Progress, Event{File: fr.Path, Stage: StageParse, Status: StatusError, Err: errParse})
		return nil
	}
	if req.AttachDevices != nil {
		m.SetDevices(req.AttachDevices)
	}
	fr.Module = m

	// passes
	stageStart = time.Now()
	emit(req.Progress, Event{File: fr.Path, Stage: StagePasses, Status: StatusWorking})
	passes, err := req.Registry.Pipeline(req.Passes)
	if err != nil {
		return err
	}
	pm := pass.NewManager(passes...)
	pm.VerifyEach = req.VerifyEach
	pm.Timer = req.Timer
	pm.OnPass = func(p pass.Pass) {
		if s, ok := p.(summarizer); ok {
			fr.Notes = append(fr.Notes, p.Name()+": "+s.Summary())
		}
	}
	err = pm.Run(ctx, m)
	fr.Timings.Set(StagePasses, time.Since(stageStart))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		code := diag.PipePassFailed
		if errors.Is(err, pass.ErrInvalidModule) {
			code = diag.IRInvalidGraph
		}
		fail(StagePasses, code, err)
		return nil
	}

	// emit
	stageStart = time.Now()
	emit(req.Progress, Event{File: fr.Path, Stage: StageEmit, Status: StatusWorking})
	switch req.Emit {
	case EmitText:
		fr.Output = []byte(m.String())
	case EmitSnapshot:
		fr.Output, err = irstore.Marshal(m)
		if err != nil {
			fail(StageEmit, diag.IODecodeError, err)
			return nil
		}
	}
	fr.Timings.Set(StageEmit, time.Since(stageStart))
	emit(req.Progress, Event{File: fr.Path, Stage: StageEmit, Status: StatusDone, Elapsed: fr.Timings.Sum(StageParse, StagePasses, StageEmit)})
	return nil
}

var errParse = errors.New("parse failed")

// load returns (nil, nil) when the text form had errors; those are already
// in fr.Bag.
func load(file *source.File, fr *FileResult) (*ir.Module, error) {
	if isSnapshot(fr.Path) {
		m, err := irstore.ReadFile(fr.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		return m, nil
	}
	m, ok := irtext.ParseFile(file, diag.BagReporter{Bag: fr.Bag})
	if !ok {
		return nil, nil
	}
	return m, nil
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

func emptySpan(id source.FileID) source.Span {
	return source.Span{File: id}
}

func isSnapshot(path string) bool {
	return strings.EqualFold(filepath.Ext(path), irstore.Ext)
}

// ListFiles expands directories into the IR files (.ir and .irpack) they
// contain, recursively and sorted. Plain file arguments are kept as given.
func ListFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ext := strings.ToLower(filepath.Ext(path)); ext == TextExt || ext == irstore.Ext {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
