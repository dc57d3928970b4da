package analysis

import (
	"errors"
	"strings"
	"testing"
)

const validReply = `{
	"Class": "Booked",
	"Explanation": "An appointment was scheduled.",
	"Summary": "Caller reported a leak.\nA repair visit was offered.\nThe caller accepted.\nThe visit is on Tuesday.\nThe call ended politely.",
	"Entities": {
		"Customer Name": "Jane Doe",
		"address": "123 Main St",
		"Services Requested": "Repair",
		"Reason of call": "Leak"
	}
}`

func TestParseAnalysis_RoundTrip(t *testing.T) {
	res, err := ParseAnalysis(validReply)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}

	if res.Class != LabelBooked {
		t.Errorf("expected class Booked, got %q", res.Class)
	}
	if res.Explanation != "An appointment was scheduled." {
		t.Errorf("unexpected explanation: %q", res.Explanation)
	}
	if !strings.HasPrefix(res.Summary, "Caller reported a leak.") {
		t.Errorf("unexpected summary: %q", res.Summary)
	}

	wantEntities := []Entity{
		{Name: "Customer Name", Value: "Jane Doe"},
		{Name: "address", Value: "123 Main St"},
		{Name: "Services Requested", Value: "Repair"},
		{Name: "Reason of call", Value: "Leak"},
	}
	if len(res.Entities) != len(wantEntities) {
		t.Fatalf("expected %d entities, got %d", len(wantEntities), len(res.Entities))
	}
	for i, want := range wantEntities {
		if res.Entities[i] != want {
			t.Errorf("entity %d: expected %+v, got %+v", i, want, res.Entities[i])
		}
	}
}

func TestParseAnalysis_EntityOrderPreserved(t *testing.T) {
	// Reverse of the usual key order; the parsed slice must match the
	// document, not any fixed expectation.
	raw := `{"Class":"Excused","Explanation":"Resolved on the call.","Summary":"s","Entities":{"Reason of call":"Question","Services Requested":"None","address":"9 Oak Ave","Customer Name":"Bob Roe"}}`

	res, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}

	wantOrder := []string{"Reason of call", "Services Requested", "address", "Customer Name"}
	for i, name := range wantOrder {
		if res.Entities[i].Name != name {
			t.Errorf("entity %d: expected name %q, got %q", i, name, res.Entities[i].Name)
		}
	}
}

func TestParseAnalysis_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"non-JSON text", "the call went well"},
		{"JSON array", `["Booked"]`},
		{"missing Class", `{"Explanation":"e","Summary":"s","Entities":{}}`},
		{"missing Explanation", `{"Class":"Booked","Summary":"s","Entities":{}}`},
		{"missing Summary", `{"Class":"Booked","Explanation":"e","Entities":{}}`},
		{"missing Entities", `{"Class":"Booked","Explanation":"e","Summary":"s"}`},
		{"scalar Entities", `{"Class":"Booked","Explanation":"e","Summary":"s","Entities":"none"}`},
		{"array Entities", `{"Class":"Booked","Explanation":"e","Summary":"s","Entities":["a"]}`},
		{"non-string Class", `{"Class":7,"Explanation":"e","Summary":"s","Entities":{}}`},
		{"unknown label", `{"Class":"Callback","Explanation":"e","Summary":"s","Entities":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAnalysis(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var malformed *MalformedAnalysisError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedAnalysisError, got %T", err)
			}
		})
	}
}

func TestParseAnalysis_IgnoresUnknownTopLevelKeys(t *testing.T) {
	raw := `{"Class":"Unbooked","Explanation":"e","Summary":"s","Entities":{},"Confidence":0.9}`

	res, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}
	if res.Class != LabelUnbooked {
		t.Errorf("expected class Unbooked, got %q", res.Class)
	}
	if len(res.Entities) != 0 {
		t.Errorf("expected no entities, got %v", res.Entities)
	}
}

func TestParseAnalysis_NonStringEntityValues(t *testing.T) {
	raw := `{"Class":"Booked","Explanation":"e","Summary":"s","Entities":{"Customer Name":null,"Visits":2,"Confirmed":true}}`

	res, err := ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis: %v", err)
	}

	want := []Entity{
		{Name: "Customer Name", Value: ""},
		{Name: "Visits", Value: "2"},
		{Name: "Confirmed", Value: "true"},
	}
	for i, w := range want {
		if res.Entities[i] != w {
			t.Errorf("entity %d: expected %+v, got %+v", i, w, res.Entities[i])
		}
	}
}

func TestLabel_Valid(t *testing.T) {
	for _, l := range []Label{LabelBooked, LabelUnbooked, LabelNotALead, LabelExcused} {
		if !l.Valid() {
			t.Errorf("expected %q to be valid", l)
		}
	}
	for _, l := range []Label{"", "booked", "Callback", "Not A Lead"} {
		if l.Valid() {
			t.Errorf("expected %q to be invalid", l)
		}
	}
}

func TestLabel_Booked(t *testing.T) {
	if !LabelBooked.Booked() {
		t.Error("expected Booked label to report booked")
	}
	for _, l := range []Label{LabelUnbooked, LabelNotALead, LabelExcused} {
		if l.Booked() {
			t.Errorf("expected %q not to report booked", l)
		}
	}
}
