package jsoncover

import (
	"context"
	"log/slog"

	"github.com/ShubhamK2003/JSONCover/coverage"
	"github.com/ShubhamK2003/JSONCover/jsonvalue"
	"github.com/ShubhamK2003/JSONCover/pointer"
)

// Validate evaluates instance and returns every failure in Basic output
// form. instance is a value from ParseJSON/ParseYAML; map[string]any trees
// are accepted and converted.
func (s *Schema) Validate(_ context.Context, instance any) BasicOutput {
	e := evaluation{collect: true}
	valid := e.schema(s, s.rootFrame(), normalizeDocument(instance), pointer.Root)
	return BasicOutput{Valid: valid, Errors: e.errs}
}

// ValidateBytes parses data as JSON and validates it.
func (s *Schema) ValidateBytes(ctx context.Context, data []byte, opt ParseOpt) (BasicOutput, error) {
	v, err := ParseJSON(data, opt)
	if err != nil {
		return BasicOutput{}, err
	}
	return s.Validate(ctx, v), nil
}

// Check is Validate reporting through the error interface: nil when valid,
// ValidationErrors otherwise.
func (s *Schema) Check(ctx context.Context, instance any) error {
	return s.Validate(ctx, instance).Err()
}

// Matches reports validity without building error entries.
func (s *Schema) Matches(instance any) bool {
	return matches(s, s.rootFrame(), normalizeDocument(instance), pointer.Root)
}

func (s *Schema) rootFrame() frame { return frame{base: s.location} }

// Result pairs the validation output with the coverage of one run.
type Result struct {
	Output   BasicOutput     `json:"output"`
	Coverage coverage.Report `json:"coverage"`
}

// Cover validates instance and reconciles the outcome with the constraints
// the schema declares. Each call uses its own tracker, so concurrent calls
// on one Schema are independent.
func (s *Schema) Cover(ctx context.Context, instance any) Result {
	instance = normalizeDocument(instance)
	out := s.Validate(ctx, instance)
	t := coverage.NewTracker(s.constraintLocations())
	for _, e := range out.Errors {
		if !e.IsSummary() {
			t.Violated(e.AbsoluteKeywordLocation)
		}
	}
	w := unvalidatedWalk{ctx: ctx, log: s.logger(), t: t}
	w.schema(s, instance, pointer.Root)
	return Result{Output: out, Coverage: t.Report()}
}

func (s *Schema) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return slog.New(slog.DiscardHandler)
}

// unvalidatedWalk follows declared properties through the instance and
// counts every declared property the instance does not have.
type unvalidatedWalk struct {
	ctx context.Context
	log *slog.Logger
	t   *coverage.Tracker
}

func (w unvalidatedWalk) schema(s *Schema, inst any, at pointer.Pointer) {
	if s.kind != KindGeneral {
		return
	}
	for _, v := range s.children {
		switch v := v.(type) {
		case *Properties:
			obj, isObj := inst.(*jsonvalue.Object)
			if !isObj {
				// declared properties only apply to objects
				continue
			}
			for _, p := range v.Properties {
				pv, ok := obj.Get(p.Name)
				if !ok {
					w.log.DebugContext(w.ctx, "incrementing unvalidated constraint", "path", at.URIFragment(), "property", p.Name)
					w.t.Unvalidated(1)
					continue
				}
				w.schema(p.Schema, pv, at.Child(p.Name))
			}
		case *Ref:
			w.schema(v.Target, inst, at)
		}
	}
}
