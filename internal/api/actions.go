package api

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
	"github.com/talgya/probably-a-wizard/internal/engine"
)

// ErrUnknownAction is returned by Apply for names not in Actions.
var ErrUnknownAction = errors.New("unknown action")

// maxConvertTimes bounds a single convert request.
const maxConvertTimes = 1000

// ActionRequest carries the arguments of every action; each action reads
// only the fields it needs.
type ActionRequest struct {
	Resource string  `json:"resource,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Manager  *string `json:"manager,omitempty"`
	Slot     string  `json:"slot,omitempty"`
	Building string  `json:"building,omitempty"`
	Times    int     `json:"times,omitempty"`
	Chain    string  `json:"chain,omitempty"`
	Tier     int     `json:"tier,omitempty"`
	A        string  `json:"a,omitempty"`
	B        string  `json:"b,omitempty"`
	ID       string  `json:"id,omitempty"`
}

type mutation func(st *economy.State) economy.Result

// parsers turn a request into a state mutation. A parse error means the
// request itself is malformed; rule failures come back in the Result.
var parsers = map[string]func(ActionRequest) (mutation, error){
	"add-resource": func(req ActionRequest) (mutation, error) {
		r, err := catalog.ParseResource(req.Resource)
		if err != nil {
			return nil, err
		}
		return func(st *economy.State) economy.Result { return st.AddResource(r, req.Amount) }, nil
	},
	"unlock-manager": func(req ActionRequest) (mutation, error) {
		m, err := parseManager(req.Manager)
		if err != nil {
			return nil, err
		}
		return func(st *economy.State) economy.Result { return st.UnlockManager(m) }, nil
	},
	"level-up-manager": func(req ActionRequest) (mutation, error) {
		m, err := parseManager(req.Manager)
		if err != nil {
			return nil, err
		}
		return func(st *economy.State) economy.Result { return st.LevelUpManager(m) }, nil
	},
	"assign-slot": func(req ActionRequest) (mutation, error) {
		if req.Slot == "" {
			return nil, errors.New("slot is required")
		}
		m := catalog.NoManager
		if req.Manager != nil {
			var err error
			if m, err = catalog.ParseManager(*req.Manager); err != nil {
				return nil, err
			}
		}
		return func(st *economy.State) economy.Result { return st.AssignToSlot(req.Slot, m) }, nil
	},
	"clear-slot": func(req ActionRequest) (mutation, error) {
		if req.Slot == "" {
			return nil, errors.New("slot is required")
		}
		return func(st *economy.State) economy.Result { return st.ClearSlot(req.Slot) }, nil
	},
	"build": func(req ActionRequest) (mutation, error) {
		b, err := catalog.ParseBuilding(req.Building)
		if err != nil {
			return nil, err
		}
		return func(st *economy.State) economy.Result { return st.BuildBuilding(b) }, nil
	},
	"convert": func(req ActionRequest) (mutation, error) {
		b, err := catalog.ParseBuilding(req.Building)
		if err != nil {
			return nil, err
		}
		times := req.Times
		if times == 0 {
			times = 1
		}
		if times < 0 || times > maxConvertTimes {
			return nil, fmt.Errorf("times must be 1-%d", maxConvertTimes)
		}
		return func(st *economy.State) economy.Result {
			var res economy.Result
			for i := range times {
				res = st.ConvertResource(b)
				if !res.OK {
					if i > 0 {
						res.Reason = fmt.Sprintf("%s (converted %d of %d)", res.Reason, i, times)
					}
					break
				}
			}
			return res
		}, nil
	},
	"upgrade-housing": func(ActionRequest) (mutation, error) {
		return (*economy.State).UpgradeHousing, nil
	},
	"add-housing-chain": func(ActionRequest) (mutation, error) {
		return (*economy.State).AddHousingChain, nil
	},
	"set-active-tier": func(req ActionRequest) (mutation, error) {
		c, err := catalog.ParseChain(req.Chain)
		if err != nil {
			return nil, err
		}
		return func(st *economy.State) economy.Result { return st.SetActiveChainTier(c, req.Tier) }, nil
	},
}

// Actions lists every action name Apply accepts.
func Actions() []string {
	names := []string{"combine", "dismiss-notification"}
	for name := range parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func parseManager(id *string) (catalog.ManagerID, error) {
	if id == nil {
		return catalog.NoManager, errors.New("manager is required")
	}
	return catalog.ParseManager(*id)
}

// Apply runs the named action against the session. The returned value is an
// economy.Result or, for combine, an economy.CombineResult. An error means
// the action name or its arguments could not be parsed.
func Apply(sess *engine.Session, name string, req ActionRequest) (any, error) {
	switch name {
	case "combine":
		a, err := catalog.ParseManager(req.A)
		if err != nil {
			return nil, fmt.Errorf("a: %w", err)
		}
		b, err := catalog.ParseManager(req.B)
		if err != nil {
			return nil, fmt.Errorf("b: %w", err)
		}
		return sess.Combine(a, b), nil

	case "dismiss-notification":
		if req.ID == "" {
			return nil, errors.New("id is required")
		}
		if !sess.DismissNotification(req.ID) {
			return economy.Result{Reason: "Unknown notification."}, nil
		}
		return economy.Result{OK: true}, nil
	}

	parse, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	fn, err := parse(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return sess.Do(name, fn), nil
}
