package source

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRefresher struct {
	mu    sync.Mutex
	path  string
	grow  []int
	err   error
	calls int
}

func (f *fakeRefresher) Refresh() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if len(f.grow) == 0 {
		return 0, nil
	}
	n := f.grow[0]
	f.grow = f.grow[1:]
	return n, nil
}

func (f *fakeRefresher) Path() string { return f.path }

func TestFollowerPollReportsGrowth(t *testing.T) {
	a := &fakeRefresher{path: "a", grow: []int{2, 0, 3}}
	b := &fakeRefresher{path: "b"}
	f := NewFollower(time.Hour, zerolog.Nop(), []Refresher{a, b}, []int{10, 5})
	defer f.Close()

	f.Poll()
	f.Poll()
	f.Poll()

	want := []Update{
		{Path: "a", FirstLine: 10, NewLines: 2},
		{Path: "a", FirstLine: 12, NewLines: 3},
	}
	for _, w := range want {
		select {
		case u := <-f.Updates():
			if u != w {
				t.Errorf("update = %+v, want %+v", u, w)
			}
		default:
			t.Fatalf("missing update %+v", w)
		}
	}
	select {
	case u := <-f.Updates():
		t.Errorf("unexpected update %+v", u)
	default:
	}
}

func TestFollowerStopsOnTruncation(t *testing.T) {
	r := &fakeRefresher{path: "a", err: ErrTruncated}
	f := NewFollower(time.Hour, zerolog.Nop(), []Refresher{r}, nil)
	defer f.Close()

	f.Poll()
	f.Poll()
	if r.calls != 1 {
		t.Errorf("truncated source refreshed %d times, want 1", r.calls)
	}
}

func TestFollowerKeepsPollingOnOtherErrors(t *testing.T) {
	r := &fakeRefresher{path: "a", err: errors.New("stat failed")}
	f := NewFollower(time.Hour, zerolog.Nop(), []Refresher{r}, nil)
	defer f.Close()

	f.Poll()
	f.Poll()
	if r.calls != 2 {
		t.Errorf("refresh calls = %d, want 2", r.calls)
	}
}

func TestFollowerWakesWaitingFileReaders(t *testing.T) {
	path := writeFile(t, "one\n")
	src, err := NewFileSourceWithOptions(path, FileOptions{Follow: true})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	f := NewFollower(5*time.Millisecond, zerolog.Nop(), []Refresher{src}, []int{src.LineCount()})
	f.Start()
	defer f.Close()

	fh, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	fh.WriteString("two\n")
	fh.Close()

	select {
	case u := <-f.Updates():
		if u.FirstLine != 1 || u.NewLines != 1 {
			t.Errorf("update = %+v", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update for appended line")
	}
	if line, _ := src.GetLine(1); line == nil || line.Text() != "two" {
		t.Errorf("GetLine(1) = %v", line)
	}
}
