package tui

import (
	"testing"

	"github.com/taskweave/weave/pkg/models"
)

func newLoadedMemoryPanel() *MemoryPanel {
	p := NewMemoryPanel()
	p.SetPrefs(models.DefaultMemoryPrefs("demo_user_1"), false)
	return p
}

func TestMemoryPanel_SetPrefsFillsFields(t *testing.T) {
	p := newLoadedMemoryPanel()

	want := []string{"23:00", "07:00", "90", "15", ""}
	for i, w := range want {
		if got := p.fields[i].Value(); got != w {
			t.Errorf("field %s = %q, want %q", fieldLabels[i], got, w)
		}
	}
	if p.Dirty() {
		t.Error("fresh form should not be dirty")
	}
	if p.CanSave() {
		t.Error("save should be disabled without changes")
	}
}

func TestMemoryPanel_EditEnablesSave(t *testing.T) {
	p := newLoadedMemoryPanel()
	p.fields[fieldBreak].SetValue("10")
	p.fields[fieldDietary].SetValue("vegetarian")

	if !p.Dirty() {
		t.Fatal("form should be dirty")
	}
	if !p.CanSave() {
		t.Fatal("valid change should enable save")
	}

	_, cmd := p.Update(key("ctrl+s"))
	if cmd == nil {
		t.Fatal("ctrl+s should request a save")
	}
	msg, ok := cmd().(MemorySaveRequestedMsg)
	if !ok {
		t.Fatalf("expected MemorySaveRequestedMsg, got %T", cmd())
	}
	if msg.Prefs.BreakMinutes != 10 || msg.Prefs.DietaryString() != "vegetarian" {
		t.Errorf("unexpected prefs %+v", msg.Prefs)
	}
	if msg.Prefs.UserID != "demo_user_1" {
		t.Errorf("user id = %q", msg.Prefs.UserID)
	}
}

func TestMemoryPanel_OutOfBoundsDisablesSave(t *testing.T) {
	tests := []struct {
		field int
		value string
	}{
		{fieldStudyBlock, "20"},
		{fieldStudyBlock, "181"},
		{fieldBreak, "4"},
		{fieldBreak, "31"},
		{fieldBreak, "ten"},
		{fieldSleepStart, "25:00"},
	}

	for _, tt := range tests {
		p := newLoadedMemoryPanel()
		p.fields[tt.field].SetValue(tt.value)
		if p.CanSave() {
			t.Errorf("%s=%q should disable save", fieldLabels[tt.field], tt.value)
		}
		if _, cmd := p.Update(key("ctrl+s")); cmd != nil {
			t.Errorf("%s=%q: ctrl+s should do nothing", fieldLabels[tt.field], tt.value)
		}
	}
}

func TestMemoryPanel_SavingDisablesSave(t *testing.T) {
	p := newLoadedMemoryPanel()
	p.fields[fieldBreak].SetValue("10")
	p.SetPrefs(models.DefaultMemoryPrefs("demo_user_1"), true)

	if p.CanSave() {
		t.Error("save should be disabled while saving")
	}
	if !p.Dirty() {
		t.Error("saving flag alone should not discard edits")
	}
}

func TestMemoryPanel_Reset(t *testing.T) {
	p := newLoadedMemoryPanel()
	p.fields[fieldSleepStart].SetValue("22:00")

	p.Update(key("ctrl+r"))

	if p.fields[fieldSleepStart].Value() != "23:00" {
		t.Errorf("reset should restore 23:00, got %q", p.fields[fieldSleepStart].Value())
	}
	if p.Dirty() {
		t.Error("form should be clean after reset")
	}
}

func TestMemoryPanel_ServerUpdateReplacesForm(t *testing.T) {
	p := newLoadedMemoryPanel()
	p.fields[fieldBreak].SetValue("10")

	saved := models.DefaultMemoryPrefs("demo_user_1")
	saved.BreakMinutes = 10
	p.SetPrefs(saved, false)

	if p.Dirty() {
		t.Error("form should match the saved prefs")
	}
	if p.fields[fieldBreak].Value() != "10" {
		t.Errorf("break = %q, want 10", p.fields[fieldBreak].Value())
	}
}

func TestMemoryPanel_FieldNavigation(t *testing.T) {
	p := newLoadedMemoryPanel()
	p.Focus()

	p.Update(key("down"))
	if p.selected != fieldSleepEnd {
		t.Errorf("selected = %d, want %d", p.selected, fieldSleepEnd)
	}
	p.Update(key("up"))
	p.Update(key("up"))
	if p.selected != fieldDietary {
		t.Errorf("selected should wrap to last field, got %d", p.selected)
	}

	p.Update(key("x"))
	if p.fields[fieldDietary].Value() != "x" {
		t.Errorf("typing should edit the selected field, got %q", p.fields[fieldDietary].Value())
	}
}
