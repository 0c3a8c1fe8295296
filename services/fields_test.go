package services

import (
	"testing"

	"hmo-chatbot-backend/models"
)

func TestValidateNumericID(t *testing.T) {
	schema := DefaultSchema()
	field, ok := schema.ByID("id_number")
	if !ok {
		t.Fatal("id_number field missing from schema")
	}

	cases := []struct {
		in   string
		want string
		kind ValidationErrorKind
	}{
		{"123456789", "123456789", ""},
		{"123-456-789", "123456789", ""},
		{"my ID is 123456789", "123456789", ""},
		{"תעודת הזהות שלי היא 123456789", "123456789", ""},
		{"12345", "", ValidationBadFormat},
		{"1234567890", "", ValidationBadFormat},
		{"no digits here", "", ValidationBadFormat},
	}
	for _, tc := range cases {
		got, verr := field.Validate(tc.in)
		if tc.kind == "" {
			if verr != nil {
				t.Errorf("Validate(%q): unexpected error %v", tc.in, verr)
			} else if got != tc.want {
				t.Errorf("Validate(%q) = %q, want %q", tc.in, got, tc.want)
			}
			continue
		}
		if verr == nil || verr.Kind != tc.kind {
			t.Errorf("Validate(%q): got error %v, want kind %s", tc.in, verr, tc.kind)
		}
	}
}

func TestValidateAgeRange(t *testing.T) {
	schema := DefaultSchema()
	field, _ := schema.ByID("age")

	if got, verr := field.Validate("בן 30"); verr != nil || got != "30" {
		t.Errorf("Validate(בן 30) = %q, %v", got, verr)
	}
	if got, verr := field.Validate("I am 45 years old"); verr != nil || got != "45" {
		t.Errorf("Validate(I am 45 years old) = %q, %v", got, verr)
	}
	if _, verr := field.Validate("121"); verr == nil || verr.Kind != ValidationBadFormat {
		t.Errorf("age 121 should be rejected, got %v", verr)
	}
	if got, verr := field.Validate("0"); verr != nil || got != "0" {
		t.Errorf("age 0 should be accepted, got %q, %v", got, verr)
	}
	if _, verr := field.Validate("none"); verr == nil {
		t.Error("non-numeric age should be rejected")
	}
}

func TestValidateEnumAliases(t *testing.T) {
	schema := DefaultSchema()
	hmo, _ := schema.ByID("hmo_name")

	cases := []struct {
		in   string
		want string
	}{
		{"מכבי", "maccabi"},
		{"Maccabi", "maccabi"},
		{"אני במאוחדת", "meuhedet"},
		{"meuchedet", "meuhedet"},
		{"כללית", "clalit"},
		{"I'm with Clalit", "clalit"},
	}
	for _, tc := range cases {
		got, verr := hmo.Validate(tc.in)
		if verr != nil {
			t.Errorf("Validate(%q): unexpected error %v", tc.in, verr)
			continue
		}
		if got != tc.want {
			t.Errorf("Validate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	_, verr := hmo.Validate("leumit")
	if verr == nil || verr.Kind != ValidationUnrecognizedValue {
		t.Fatalf("unknown fund should be unrecognized, got %v", verr)
	}
	if len(verr.Allowed) != 3 {
		t.Errorf("expected 3 allowed values, got %v", verr.Allowed)
	}
}

func TestValidateGenderOptions(t *testing.T) {
	schema := DefaultSchema()
	gender, _ := schema.ByID("gender")

	cases := []struct {
		in   string
		want string
	}{
		{"male", "male"},
		{"man", "male"},
		{"זכר", "male"},
		{"גבר", "male"},
		// "female" and "woman" contain "male"/"man" as substrings and must
		// still resolve to female
		{"female", "female"},
		{"woman", "female"},
		{"I am female", "female"},
		{"נקבה", "female"},
		{"אישה", "female"},
	}
	for _, tc := range cases {
		got, verr := gender.Validate(tc.in)
		if verr != nil {
			t.Errorf("Validate(%q): unexpected error %v", tc.in, verr)
			continue
		}
		if got != tc.want {
			t.Errorf("Validate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, verr := gender.Validate("malevolent"); verr == nil {
		t.Error("alias inside an unrelated word must not validate")
	}
}

func TestValidateFreeTextEmpty(t *testing.T) {
	schema := DefaultSchema()
	name, _ := schema.ByID("full_name")

	if _, verr := name.Validate("   "); verr == nil || verr.Kind != ValidationEmpty {
		t.Errorf("blank name should be empty error, got %v", verr)
	}
	if got, verr := name.Validate("  Yosi Cohen "); verr != nil || got != "Yosi Cohen" {
		t.Errorf("name should be trimmed, got %q, %v", got, verr)
	}
}

func TestFirstUnfilledFollowsSchemaOrder(t *testing.T) {
	schema := DefaultSchema()
	profile := models.UserProfile{}

	if idx := schema.FirstUnfilled(profile); idx != 0 {
		t.Fatalf("empty profile should start at 0, got %d", idx)
	}

	profile["full_name"] = "Yosi Cohen"
	profile["id_number"] = "123456789"
	if idx := schema.FirstUnfilled(profile); idx != 2 {
		t.Fatalf("expected gender (index 2) next, got %d", idx)
	}

	for _, f := range schema.Fields {
		profile[f.ID] = "x"
	}
	if !schema.Complete(profile) {
		t.Error("profile with all fields should be complete")
	}
}

func TestMatchFieldMention(t *testing.T) {
	schema := DefaultSchema()

	cases := []struct {
		in   string
		want string
	}{
		{"no, my tier is wrong", "membership_tier"},
		{"the ID number is incorrect", "id_number"},
		{"לא, הגיל לא נכון", "age"},
		{"טעות בקופת חולים", "hmo_name"},
		{"my card number is wrong", "hmo_card_number"},
		{"the name is misspelled", "full_name"},
	}
	for _, tc := range cases {
		idx, ok := schema.MatchFieldMention(tc.in)
		if !ok {
			t.Errorf("MatchFieldMention(%q): no match", tc.in)
			continue
		}
		if schema.Fields[idx].ID != tc.want {
			t.Errorf("MatchFieldMention(%q) = %s, want %s", tc.in, schema.Fields[idx].ID, tc.want)
		}
	}

	if _, ok := schema.MatchFieldMention("that's not right"); ok {
		t.Error("message naming no field should not match")
	}
}
