package omr

import "testing"

func TestClassify(t *testing.T) {
	full := Identity{StudentID: "123", StudentName: "Ali Veli", Booklet: "A"}
	idOnly := Identity{StudentID: "123"}

	tests := []struct {
		name       string
		answered   int
		total      int
		id         Identity
		wantConf   Confidence
		wantStatus ReviewStatus
	}{
		{"high", 80, 90, full, ConfidenceHigh, ReviewOK},
		{"high boundary", 79, 90, full, ConfidenceMedium, ReviewOK},
		{"high without booklet", 85, 90, idOnly, ConfidenceMedium, ReviewOK},
		{"medium", 60, 90, idOnly, ConfidenceMedium, ReviewOK},
		{"medium without id", 60, 90, Identity{}, ConfidenceLow, ReviewNeeded},
		{"low", 40, 90, Identity{}, ConfidenceLow, ReviewNeeded},
		{"critical", 39, 90, full, ConfidenceCritical, ReviewReject},
		{"empty sheet", 0, 90, full, ConfidenceCritical, ReviewReject},
		// ratios scale with the question count, nothing is pinned to 90
		{"high 120q", 107, 120, full, ConfidenceHigh, ReviewOK},
		{"low 45q", 20, 45, Identity{}, ConfidenceLow, ReviewNeeded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf, status := Classify(tc.answered, tc.total, tc.id)
			if conf != tc.wantConf || status != tc.wantStatus {
				t.Fatalf("Classify(%d,%d) = %s/%s, want %s/%s",
					tc.answered, tc.total, conf, status, tc.wantConf, tc.wantStatus)
			}
		})
	}
}

func TestConfidenceWeight(t *testing.T) {
	tests := []struct {
		c    Confidence
		want float64
	}{
		{ConfidenceHigh, 1.0},
		{ConfidenceMedium, 0.75},
		{ConfidenceLow, 0.5},
		{ConfidenceCritical, 0.25},
	}
	for _, tc := range tests {
		if got := tc.c.Weight(); got != tc.want {
			t.Errorf("%s.Weight() = %v, want %v", tc.c, got, tc.want)
		}
	}
}
