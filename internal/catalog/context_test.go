package catalog

import (
	"strings"
	"testing"
)

func testCharacter() *Character {
	return &Character{
		ID:      1,
		Name:    "Rick Sanchez",
		Status:  "Alive",
		Species: "Human",
		Gender:  "Male",
		Origin:  LocationRef{Name: "Earth (C-137)", Dimension: "Dimension C-137"},
		Location: LocationRef{
			Name:      "Citadel of Ricks",
			Dimension: "unknown",
		},
		Episodes: []EpisodeRef{
			{Name: "Pilot"}, {Name: "Lawnmower Dog"}, {Name: "Anatomy Park"},
			{Name: "M. Night Shaym-Aliens!"}, {Name: "Meeseeks and Destroy"},
			{Name: "Rick Potion #9"},
		},
	}
}

func TestBuildCharacterContext(t *testing.T) {
	got := BuildCharacterContext(testCharacter(), false)

	wantLines := []string{
		"Character Name: Rick Sanchez",
		"Species: Human",
		"Status: Alive",
		"Gender: Male",
		"Type: Unknown",
		"Origin: Earth (C-137) (Dimension C-137)",
		"Current Location: Citadel of Ricks (unknown)",
		"Total Episodes: 6 episode(s)",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("context missing %q:\n%s", line, got)
		}
	}

	// Short form cuts episode names off at five
	if strings.Contains(got, "Rick Potion #9") {
		t.Error("short context should not list the sixth episode")
	}
	if !strings.Contains(got, "Meeseeks and Destroy") {
		t.Error("short context should list the fifth episode")
	}
}

func TestBuildCharacterContextAllEpisodes(t *testing.T) {
	got := BuildCharacterContext(testCharacter(), true)
	if !strings.Contains(got, "Rick Potion #9") {
		t.Error("full context should list every episode")
	}
}

func TestBuildCharacterContextEmptyType(t *testing.T) {
	c := testCharacter()
	c.Type = "Genius"
	got := BuildCharacterContext(c, false)
	if !strings.Contains(got, "Type: Genius") {
		t.Errorf("context should carry the explicit type:\n%s", got)
	}
}

func TestBuildLocationContext(t *testing.T) {
	l := &Location{
		ID:        3,
		Name:      "Citadel of Ricks",
		Type:      "Space station",
		Dimension: "unknown",
		Residents: []Resident{
			{Name: "Rick Sanchez", Species: "Human", Status: "Alive"},
			{Name: "Morty Smith", Species: "Human", Status: "Alive"},
		},
	}

	got := BuildLocationContext(l, false)
	for _, line := range []string{
		"Location: Citadel of Ricks",
		"Type: Space station",
		"Dimension: unknown",
		"Total Residents: 2",
		"Rick Sanchez (Human, Alive)",
		"Morty Smith (Human, Alive)",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("context missing %q:\n%s", line, got)
		}
	}
}

func TestBuildLocationContextNoResidents(t *testing.T) {
	l := &Location{Name: "Abadango", Type: "Cluster", Dimension: "unknown"}
	got := BuildLocationContext(l, false)
	if !strings.Contains(got, "No known residents") {
		t.Errorf("empty residents should say so:\n%s", got)
	}
}

func TestBuildEpisodeContext(t *testing.T) {
	e := &Episode{
		ID:      1,
		Name:    "Pilot",
		AirDate: "December 2, 2013",
		Code:    "S01E01",
		Characters: []Resident{
			{Name: "Rick Sanchez"},
			{Name: "Morty Smith"},
		},
	}

	got := BuildEpisodeContext(e, true)
	for _, line := range []string{
		"Episode: Pilot",
		"Episode Number: S01E01",
		"Air Date: December 2, 2013",
		"Total Characters: 2",
		`"Rick Sanchez, Morty Smith"`,
	} {
		if !strings.Contains(got, line) {
			t.Errorf("context missing %q:\n%s", line, got)
		}
	}
}

func TestFormatResidentsLimit(t *testing.T) {
	residents := []Resident{
		{Name: "A", Species: "Human", Status: "Alive"},
		{Name: "B", Species: "Alien", Status: "Dead"},
		{Name: "C", Species: "Robot", Status: "unknown"},
	}

	got := FormatResidents(residents, 2)
	if strings.Contains(got, "C (") {
		t.Errorf("limit 2 should drop the third resident:\n%s", got)
	}
	if got != "A (Human, Alive)\nB (Alien, Dead)" {
		t.Errorf("FormatResidents() = %q", got)
	}

	// Zero or oversized limits mean no limit
	if got := FormatResidents(residents, 0); !strings.Contains(got, "C (Robot, unknown)") {
		t.Errorf("limit 0 should include everyone:\n%s", got)
	}
}

func TestCleanContext(t *testing.T) {
	got := CleanContext("Location: Earth\n\nType:  Planet\n")
	if got != "Location: Earth Type: Planet" {
		t.Errorf("CleanContext() = %q", got)
	}
}
