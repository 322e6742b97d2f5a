package catalog

import (
	"testing"
)

func TestValueCanvasOrdering(t *testing.T) {
	cat := ValueCanvas()

	wantOrder := []SectionID{
		SectionInterview, SectionICP, SectionPain, SectionDeepFear,
		SectionPayoffs, SectionSignatureMethod, SectionMistakes, SectionPrize,
	}

	order := cat.Order()
	if len(order) != len(wantOrder) {
		t.Fatalf("catalog has %d sections, want %d", len(order), len(wantOrder))
	}
	for i, id := range wantOrder {
		if order[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, order[i], id)
		}
	}

	if cat.First() != SectionInterview {
		t.Errorf("First() = %s, want %s", cat.First(), SectionInterview)
	}

	// Next links follow catalog order; the last section has none.
	for i, id := range order {
		def, ok := cat.Get(id)
		if !ok {
			t.Fatalf("Get(%s) missing", id)
		}
		if i < len(order)-1 {
			if def.Next != order[i+1] {
				t.Errorf("%s.Next = %s, want %s", id, def.Next, order[i+1])
			}
		} else if def.HasNext() {
			t.Errorf("last section %s should have no next", id)
		}
	}
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		sections []SectionDefinition
	}{
		{
			name:     "empty id",
			sections: []SectionDefinition{{ID: "", Order: 1, Name: "Broken"}},
		},
		{
			name: "duplicate id",
			sections: []SectionDefinition{
				{ID: "a", Order: 1, Name: "A"},
				{ID: "a", Order: 2, Name: "A again"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.sections); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cat := ValueCanvas()

	tests := []struct {
		name    string
		raw     string
		want    SectionID
		wantErr bool
	}{
		{name: "exact id", raw: "icp", want: SectionICP},
		{name: "capitalized", raw: "Deep_Fear", want: SectionDeepFear},
		{name: "surrounding spaces", raw: " pain ", want: SectionPain},
		{name: "unknown id", raw: "budget", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cat.Resolve(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNextUnfinished(t *testing.T) {
	cat := ValueCanvas()

	tests := []struct {
		name     string
		statuses map[SectionID]SectionStatus
		want     SectionID
		wantOk   bool
	}{
		{
			name:     "fresh thread starts at interview",
			statuses: map[SectionID]SectionStatus{},
			want:     SectionInterview,
			wantOk:   true,
		},
		{
			name: "first done moves to icp",
			statuses: map[SectionID]SectionStatus{
				SectionInterview: StatusDone,
			},
			want:   SectionICP,
			wantOk: true,
		},
		{
			name: "in progress still counts as unfinished",
			statuses: map[SectionID]SectionStatus{
				SectionInterview: StatusDone,
				SectionICP:       StatusInProgress,
			},
			want:   SectionICP,
			wantOk: true,
		},
		{
			name: "gap left by a skip is revisited first",
			statuses: map[SectionID]SectionStatus{
				SectionInterview: StatusDone,
				SectionICP:       StatusInProgress,
				SectionPain:      StatusDone,
			},
			want:   SectionICP,
			wantOk: true,
		},
		{
			name: "all done",
			statuses: func() map[SectionID]SectionStatus {
				m := map[SectionID]SectionStatus{}
				for _, id := range ValueCanvas().Order() {
					m[id] = StatusDone
				}
				return m
			}(),
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cat.NextUnfinished(tt.statuses)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("NextUnfinished = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidationRule(t *testing.T) {
	tests := []struct {
		name    string
		rule    ValidationRule
		value   string
		wantErr bool
	}{
		{
			name:  "required present",
			rule:  ValidationRule{RuleType: "required", ErrorMessage: "missing"},
			value: "Dana",
		},
		{
			name:    "required blank",
			rule:    ValidationRule{RuleType: "required", ErrorMessage: "missing"},
			value:   "   ",
			wantErr: true,
		},
		{
			name:  "min length met",
			rule:  ValidationRule{RuleType: "min_length", Value: 5, ErrorMessage: "too short"},
			value: "long enough",
		},
		{
			name:    "min length violated",
			rule:    ValidationRule{RuleType: "min_length", Value: 20, ErrorMessage: "too short"},
			value:   "brief",
			wantErr: true,
		},
		{
			name:    "max length violated",
			rule:    ValidationRule{RuleType: "max_length", Value: 3, ErrorMessage: "too long"},
			value:   "abcd",
			wantErr: true,
		},
		{
			name:  "choices match is case insensitive",
			rule:  ValidationRule{RuleType: "choices", Value: []string{"yes", "no"}, ErrorMessage: "pick one"},
			value: "YES",
		},
		{
			name:    "choices mismatch",
			rule:    ValidationRule{RuleType: "choices", Value: []string{"yes", "no"}, ErrorMessage: "pick one"},
			value:   "maybe",
			wantErr: true,
		},
		{
			name:  "unknown rule passes",
			rule:  ValidationRule{RuleType: "regex"},
			value: "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(tt.value)
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
