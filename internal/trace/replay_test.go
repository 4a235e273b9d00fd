package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/gamebus/internal/event"
)

func TestParseLine(t *testing.T) {
	e, err := ParseLine([]byte(`{"seq":3,"event":"Player.Move","time":"2024-01-02T15:04:05Z","params":{"int":4}}`))
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if e.Seq != 3 || e.Event != "Player.Move" || !e.Time.Equal(fixedClock()) {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Params.Get("int").Int() != 4 {
		t.Errorf("unexpected params: %s", e.Params.Raw)
	}

	for _, bad := range []string{`not json`, `{"seq":1}`, `{"event":"A","time":"yesterday"}`} {
		if _, err := ParseLine([]byte(bad)); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseLine(%s): expected ErrMalformedLine, got %v", bad, err)
		}
	}
}

func TestReplay_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	src := event.NewRegistry()
	rec := NewRecorder(&buf, WithClock(fixedClock))
	rec.Attach(src, "Player.Move")
	ev := src.MustRegister("Player.Move")

	for i := 1; i <= 3; i++ {
		p := event.NewParams()
		_ = event.Add(p, move{DX: i})
		_ = event.Add(p, i*10)
		_ = ev.Invoke(p)
	}

	dst := event.NewRegistry()
	var got []move
	var total int
	dst.MustRegister("Player.Move").Subscribe(event.Action(func(p *event.Params) {
		got = append(got, event.Get[move](p))
		total += event.Get[int](p)
	}))

	rp := NewReplayer(dst, nil)
	RegisterType[move](rp)

	sum, err := rp.Replay(&buf)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if sum.Lines != 3 || sum.Fired != 3 || sum.Skipped != 0 || sum.Failed != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if len(got) != 3 || got[2].DX != 3 || total != 60 {
		t.Errorf("unexpected replayed payloads: %v total=%d", got, total)
	}
}

func TestReplay_SkipsAndCounts(t *testing.T) {
	reg := event.NewRegistry()
	reg.MustRegister("Known").Subscribe(func(*event.Params) error {
		return errors.New("subscriber failed")
	})
	reg.Subscribe("Pending", event.Action(func(*event.Params) {}))

	input := strings.Join([]string{
		`{"seq":1,"event":"Known","params":{"mystery.Type":{"a":1}}}`,
		``,
		`{"seq":2,"event":"Pending","params":{}}`,
		`{"seq":3,"event":"Missing","params":{}}`,
	}, "\n")

	sum, err := NewReplayer(reg, nil).Replay(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if sum.Lines != 3 || sum.Fired != 1 || sum.Skipped != 2 || sum.Failed != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.UnknownTypes["mystery.Type"] != 1 {
		t.Errorf("expected unknown type to be counted, got %v", sum.UnknownTypes)
	}
}

func TestReplay_Errors(t *testing.T) {
	reg := event.NewRegistry()
	reg.MustRegister("Known")

	tests := []struct {
		name  string
		input string
	}{
		{"malformed", "{"},
		{"bad value", `{"event":"Known","params":{"int":"seven"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReplayer(reg, nil).Replay(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), "line 1") {
				t.Errorf("expected line-numbered error, got %v", err)
			}
		})
	}
}

func TestReplay_Only(t *testing.T) {
	reg := event.NewRegistry()
	count := 0
	reg.MustRegister("Input").Subscribe(event.Action(func(*event.Params) { count++ }))
	reg.MustRegister("Derived").Subscribe(event.Action(func(*event.Params) {
		t.Error("filtered event must not fire")
	}))

	input := `{"event":"Input","params":{}}
{"event":"Derived","params":{}}
{"event":"Input","params":{}}`

	sum, err := NewReplayer(reg, nil).Only("Input").Replay(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if count != 2 || sum.Fired != 2 || sum.Filtered != 1 {
		t.Errorf("unexpected result: count=%d summary=%+v", count, sum)
	}
}
