package broker

import (
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// MethodChoice is the selected automation method for a source, with the
// user-facing reason for the choice.
type MethodChoice struct {
	Method model.RemovalMethod
	Reason string
}

// BestAutomationMethod chooses the most automatable removal method a source
// supports: a structured opt-out form beats a templated email, and a manual
// guide is the fallback when no structured method exists.
//
// Consolidated sources defer to their ultimate parent's capabilities: the
// removal is submitted at the parent, so the parent's methods are what
// matter.
func (d *Directory) BestAutomationMethod(source string) MethodChoice {
	root := d.UltimateParent(source)
	entry, ok := d.entries[root]
	if !ok {
		return MethodChoice{
			Method: model.MethodManualGuide,
			Reason: "source is not in the broker directory; follow the generic opt-out guide",
		}
	}

	switch {
	case entry.OptOutForm != "":
		return MethodChoice{
			Method: model.MethodAutoForm,
			Reason: "source provides a structured opt-out form",
		}
	case entry.PrivacyEmail != "":
		return MethodChoice{
			Method: model.MethodAutoEmail,
			Reason: "source accepts removal requests at its privacy contact address",
		}
	default:
		return MethodChoice{
			Method: model.MethodManualGuide,
			Reason: "source has no automatable opt-out flow",
		}
	}
}
