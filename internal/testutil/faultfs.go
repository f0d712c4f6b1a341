package testutil

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FaultFs wraps an afero.Fs and fails selected operations. Faults are keyed
// by a path substring; the first matching fault wins. It is safe for
// concurrent use.
type FaultFs struct {
	afero.Fs

	mu     sync.Mutex
	faults []fault
}

// Op names a filesystem operation FaultFs can fail.
type Op string

const (
	OpOpen     Op = "open"
	OpOpenFile Op = "openfile"
	OpRename   Op = "rename"
	OpStat     Op = "stat"
	OpWrite    Op = "write"
	OpSync     Op = "sync"
	OpClose    Op = "close"
	OpRead     Op = "read"
)

type fault struct {
	op    Op
	match string
	err   error
	times int // remaining failures; negative means unlimited
}

// NewFaultFs wraps base.
func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{Fs: base}
}

// Fail makes every op on a path containing match return err.
func (f *FaultFs) Fail(op Op, match string, err error) {
	f.FailN(op, match, err, -1)
}

// FailN makes the next n matching ops return err.
func (f *FaultFs) FailN(op Op, match string, err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, fault{op: op, match: match, err: err, times: n})
}

// Reset removes all faults.
func (f *FaultFs) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = nil
}

func (f *FaultFs) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.faults {
		ft := &f.faults[i]
		if ft.op != op || ft.times == 0 || !strings.Contains(path, ft.match) {
			continue
		}
		if ft.times > 0 {
			ft.times--
		}
		return ft.err
	}
	return nil
}

// Open opens a file for reading.
func (f *FaultFs) Open(name string) (afero.File, error) {
	if err := f.check(OpOpen, name); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &faultFile{File: file, fs: f}, nil
}

// OpenFile opens a file with the given flags.
func (f *FaultFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := f.check(OpOpenFile, name); err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultFile{File: file, fs: f}, nil
}

// Rename renames oldname to newname.
func (f *FaultFs) Rename(oldname, newname string) error {
	if err := f.check(OpRename, oldname); err != nil {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return f.Fs.Rename(oldname, newname)
}

// Stat returns file info.
func (f *FaultFs) Stat(name string) (os.FileInfo, error) {
	if err := f.check(OpStat, name); err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return f.Fs.Stat(name)
}

// Name identifies the filesystem.
func (f *FaultFs) Name() string {
	return "FaultFs(" + f.Fs.Name() + ")"
}

type faultFile struct {
	afero.File
	fs *FaultFs
}

func (ff *faultFile) Write(p []byte) (int, error) {
	if err := ff.fs.check(OpWrite, ff.Name()); err != nil {
		return 0, err
	}
	return ff.File.Write(p)
}

func (ff *faultFile) Read(p []byte) (int, error) {
	if err := ff.fs.check(OpRead, ff.Name()); err != nil {
		return 0, err
	}
	return ff.File.Read(p)
}

func (ff *faultFile) Sync() error {
	if err := ff.fs.check(OpSync, ff.Name()); err != nil {
		return err
	}
	return ff.File.Sync()
}

func (ff *faultFile) Close() error {
	closeErr := ff.File.Close()
	if err := ff.fs.check(OpClose, ff.Name()); err != nil {
		return err
	}
	return closeErr
}
