package app

import (
	"fmt"
	"net/http"
	"strconv"

	gohttp "github.com/km-arc/go-inject/framework/http"
)

const maxRuns = 8

// EngineHandler starts a fresh engine per request. The number of starts
// comes from a JSON body {"runs": n} or the runs query parameter.
type EngineHandler struct {
	Engine *Engine `inject:""`
}

type startRequest struct {
	Runs int `json:"runs"`
}

func (h *EngineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

	var in startRequest
	if req.IsJSON() {
		if err := req.Decode(&in); err != nil {
			res.BadRequest(err.Error())
			return
		}
	} else {
		runs, err := strconv.Atoi(req.Query("runs", "1"))
		if err != nil {
			res.BadRequest("runs must be a number")
			return
		}
		in.Runs = runs
	}
	if in.Runs < 1 || in.Runs > maxRuns {
		res.BadRequest(fmt.Sprintf("runs must be between 1 and %d", maxRuns))
		return
	}

	sounds := make([]string, 0, in.Runs)
	for range in.Runs {
		sound, err := h.Engine.Start()
		if err != nil {
			res.Fail(err)
			return
		}
		sounds = append(sounds, sound)
	}
	res.Success(map[string]any{
		"sound":    sounds[len(sounds)-1],
		"sounds":   sounds,
		"cylinder": h.Engine.Cylinder.Serial(),
	})
}

// GarageHandler reports the garage state.
type GarageHandler struct {
	Garage *Garage `inject:""`
}

func (h *GarageHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{
		"name":   h.Garage.Name,
		"parked": h.Garage.Parked(),
	})
}
