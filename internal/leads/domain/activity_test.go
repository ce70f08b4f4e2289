package domain

import "testing"

func TestActivityMetadata_RoundTripByKind(t *testing.T) {
	meta := StatusChangedMeta{From: StatusIdentified, To: StatusOutreached}

	raw, err := MarshalActivityMetadata(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := UnmarshalActivityMetadata(ActivityStatusChanged, raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, ok := decoded.(StatusChangedMeta)
	if !ok {
		t.Fatalf("decoded wrong variant: %T", decoded)
	}
	if got.From != StatusIdentified || got.To != StatusOutreached {
		t.Fatalf("got %+v", got)
	}
}

func TestActivityMetadata_UnknownKindRejected(t *testing.T) {
	if _, err := UnmarshalActivityMetadata("bogus", []byte("{}")); err == nil {
		t.Fatal("expected error for unknown activity kind")
	}
}

func TestActivityMetadata_KindTags(t *testing.T) {
	cases := []struct {
		meta ActivityMetadata
		want ActivityKind
	}{
		{LeadCreatedMeta{}, ActivityLeadCreated},
		{StatusChangedMeta{}, ActivityStatusChanged},
		{LoggedMeta{}, ActivityLogged},
		{QualificationUpdatedMeta{}, ActivityQualificationUpdated},
	}
	for _, tc := range cases {
		if got := tc.meta.ActivityKind(); got != tc.want {
			t.Errorf("%T reports kind %s, want %s", tc.meta, got, tc.want)
		}
	}
}
