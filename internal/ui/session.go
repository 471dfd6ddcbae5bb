package ui

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/piwi3910/cnc-calculator/internal/engine"
	"github.com/piwi3910/cnc-calculator/internal/logging"
	"github.com/piwi3910/cnc-calculator/internal/model"
)

// Calculation is what the results panel shows after Calculate.
type Calculation struct {
	Suggested   model.Range
	Chipload    float64
	Feedrate    float64
	Guidelines  model.Guidelines
	OverCeiling bool
}

// Session holds the calculator state behind the window: the current
// parameters, undo history, saved setups and the tool rack.
type Session struct {
	eng       *engine.Engine
	params    model.CuttingParameters
	history   *History
	setups    []model.Setup
	inventory model.Inventory
	log       *zerolog.Logger
}

// NewSession starts a session from initial parameters.
func NewSession(eng *engine.Engine, params model.CuttingParameters, inventory model.Inventory) *Session {
	return &Session{
		eng:       eng,
		params:    params,
		history:   NewHistory(),
		inventory: inventory,
		log:       logging.GetSubsystemLogger("ui"),
	}
}

func (s *Session) Parameters() model.CuttingParameters { return s.params }
func (s *Session) Engine() *engine.Engine { return s.eng }
func (s *Session) Inventory() model.Inventory { return s.inventory }
func (s *Session) History() *History { return s.history }

// Setups returns the setups saved so far.
func (s *Session) Setups() []model.Setup {
	return append([]model.Setup(nil), s.setups...)
}

// commit records the current state for undo and swaps in next.
func (s *Session) commit(next model.CuttingParameters, label string) {
	s.history.Push(MakeSnapshot(s.params, label))
	s.params = next
}

// SetField parses text and applies it to field. The parameters are left
// unchanged when the text is rejected.
func (s *Session) SetField(field model.Field, text string) error {
	var v float64
	if field == model.FieldFlutes {
		n, err := ParseFlutes(text)
		if err != nil {
			return err
		}
		v = float64(n)
	} else {
		var err error
		if v, err = ParseMeasurement(field.String(), text); err != nil {
			return err
		}
	}

	next := s.params
	if err := next.Update(field, v); err != nil {
		return err
	}
	s.commit(next, "Set "+field.String())
	return nil
}

// SelectMaterial switches to a catalog material.
func (s *Session) SelectMaterial(name string) error {
	m, err := s.eng.Catalog().Material(name)
	if err != nil {
		return err
	}
	next := s.params
	if err := next.SetMaterial(m); err != nil {
		return err
	}
	s.commit(next, "Material "+name)
	return nil
}

// SelectCuttingStyle switches to a catalog cutting style.
func (s *Session) SelectCuttingStyle(name string) error {
	cs, err := s.eng.Catalog().CuttingStyle(name)
	if err != nil {
		return err
	}
	next := s.params
	if err := next.SetCuttingStyle(cs); err != nil {
		return err
	}
	s.commit(next, "Style "+name)
	return nil
}

// UseTool loads a tool from the rack by name.
func (s *Session) UseTool(name string) error {
	tool := s.inventory.FindToolByName(name)
	if tool == nil {
		return fmt.Errorf("tool %q not in rack", name)
	}
	next := s.params
	if err := tool.ApplyTo(&next, s.eng.Catalog()); err != nil {
		return err
	}
	s.commit(next, "Tool "+name)
	return nil
}

// SetInventory replaces the tool rack, e.g. after an import.
func (s *Session) SetInventory(inv model.Inventory) {
	s.inventory = inv
}

// Suggest returns the suggested chipload range for the current tool and material.
func (s *Session) Suggest() (model.Range, error) {
	return s.eng.SuggestChipload(s.params.ToolDiameter(), s.params.Material())
}

// Calculate computes feedrate and guidelines. A chipload must be set.
func (s *Session) Calculate() (Calculation, error) {
	suggested, err := s.Suggest()
	if err != nil {
		return Calculation{}, err
	}
	guidelines, err := model.CalculateGuidelines(s.params)
	if err != nil {
		return Calculation{}, err
	}
	feedrate, err := s.params.Feedrate()
	if err != nil {
		return Calculation{}, err
	}
	chipload, _ := s.params.Chipload()

	calc := Calculation{
		Suggested:   suggested,
		Chipload:    chipload,
		Feedrate:    feedrate,
		Guidelines:  guidelines,
		OverCeiling: s.eng.ExceedsCeiling(feedrate),
	}
	if calc.OverCeiling {
		s.log.Warn().Float64("feedrate", feedrate).Float64("ceiling", s.eng.Options().MaxFeedrate).
			Msg("feedrate exceeds machine ceiling")
	}
	return calc, nil
}

// Maximize searches for the best chipload at the current spindle speed and
// commits it when one was found.
func (s *Session) Maximize() (engine.MaximizeResult, error) {
	res, err := s.eng.Maximize(s.params)
	if err != nil {
		return engine.MaximizeResult{}, err
	}
	s.log.Debug().Float64("rpm", res.RPM).Float64("chipload", res.Chipload).
		Bool("found", res.Found).Int("iterations", res.Iterations).Msg("maximized feedrate")
	if !res.Found {
		return res, nil
	}
	next, err := res.Apply(s.params)
	if err != nil {
		return engine.MaximizeResult{}, err
	}
	s.commit(next, "Maximize feedrate")
	return res, nil
}

// StepUpSpindle moves to the next configured spindle speed and maximizes
// there. It returns false when the spindle is already at its fastest step.
// If nothing fits under the ceiling at the faster speed the parameters are
// left alone.
func (s *Session) StepUpSpindle() (engine.MaximizeResult, bool, error) {
	next, ok := engine.NextSpindleStep(s.eng.Options().SpindleSteps, s.params.RPM())
	if !ok {
		return engine.MaximizeResult{}, false, nil
	}
	stepped, err := s.params.WithRPM(next)
	if err != nil {
		return engine.MaximizeResult{}, false, err
	}
	res, err := s.eng.Maximize(stepped)
	if err != nil {
		return engine.MaximizeResult{}, false, err
	}
	if !res.Found {
		return res, true, nil
	}
	applied, err := res.Apply(stepped)
	if err != nil {
		return engine.MaximizeResult{}, false, err
	}
	s.commit(applied, fmt.Sprintf("Spindle %.0f rpm", next))
	return res, true, nil
}

// Undo restores the previous parameters.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo(MakeSnapshot(s.params, s.history.UndoLabel()))
	if !ok {
		return false
	}
	return s.restore(snap)
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo(MakeSnapshot(s.params, s.history.RedoLabel()))
	if !ok {
		return false
	}
	return s.restore(snap)
}

func (s *Session) restore(snap Snapshot) bool {
	p, err := snap.Parameters.Restore(s.eng.Catalog())
	if err != nil {
		s.log.Error().Err(err).Str("label", snap.Label).Msg("cannot restore snapshot")
		return false
	}
	s.params = p
	return true
}

// SaveSetup freezes the current parameters under label for export.
func (s *Session) SaveSetup(label string) (model.Setup, error) {
	if label == "" {
		label = fmt.Sprintf("Setup %d", len(s.setups)+1)
	}
	setup, err := model.NewSetup(label, s.params)
	if err != nil {
		return model.Setup{}, err
	}
	s.setups = append(s.setups, setup)
	s.log.Info().Str("id", setup.ID).Str("label", label).Float64("feedrate", setup.Feedrate).Msg("setup saved")
	return setup, nil
}

// RemoveSetup drops the saved setup with the given ID.
func (s *Session) RemoveSetup(id string) {
	for i := range s.setups {
		if s.setups[i].ID == id {
			s.setups = append(s.setups[:i], s.setups[i+1:]...)
			return
		}
	}
}

// MergeMaterials adds imported materials to the catalog. Materials sharing
// a name with an existing one replace it, including the one in use.
func (s *Session) MergeMaterials(materials []model.Material) error {
	catalog, err := s.eng.Catalog().Merge(materials)
	if err != nil {
		return err
	}
	m, err := catalog.Material(s.params.Material().Name)
	if err != nil {
		return err
	}
	next := s.params
	if err := next.SetMaterial(m); err != nil {
		return err
	}
	s.eng = engine.New(catalog, s.eng.Options())
	s.history.Clear()
	s.params = next
	s.log.Info().Int("materials", len(materials)).Msg("materials merged into catalog")
	return nil
}
