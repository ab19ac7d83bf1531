package report_test

import (
	"testing"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
)

func TestQueryField(t *testing.T) {
	doc := sampleVerdict().Document()

	q, err := report.ParseQuery(".asset_id")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Expr() != ".asset_id" {
		t.Errorf("Expr = %q", q.Expr())
	}

	got, err := q.Run(&doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0] != `"case-9"` {
		t.Errorf("Run = %v", got)
	}
}

func TestQueryNested(t *testing.T) {
	doc := sampleVerdict().Document()

	q, err := report.ParseQuery(".evidence | keys")
	if err != nil {
		t.Fatal(err)
	}
	got, err := q.Run(&doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != `["ai","pitch","spectral","time"]` {
		t.Errorf("keys = %v", got)
	}
}

func TestQuerySelect(t *testing.T) {
	doc := sampleVerdict().Document()

	q, err := report.ParseQuery("select(.alteration_detected) | .confidence.score")
	if err != nil {
		t.Fatal(err)
	}
	got, err := q.Run(&doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "0.95" {
		t.Errorf("detected doc = %v", got)
	}

	doc.AlterationDetected = false
	got, err = q.Run(&doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("clean doc emitted %v", got)
	}
}

func TestQueryMultipleResults(t *testing.T) {
	doc := sampleVerdict().Document()

	q, err := report.ParseQuery(".formant_baseline.f1, .formant_baseline.f2")
	if err != nil {
		t.Fatal(err)
	}
	got, err := q.Run(&doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "480" || got[1] != "1300" {
		t.Errorf("Run = %v", got)
	}
}

func TestParseQueryRejectsBadExpression(t *testing.T) {
	if _, err := report.ParseQuery(".foo |"); err == nil {
		t.Error("dangling pipe accepted")
	}
}

func TestQueryRuntimeError(t *testing.T) {
	doc := sampleVerdict().Document()

	q, err := report.ParseQuery(".asset_id + 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.Run(&doc); err == nil {
		t.Error("string plus number succeeded")
	}
}
