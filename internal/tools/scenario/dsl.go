package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of steps loaded from a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one DSL call with its arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it builds.
func LoadScenario(name, source string) (*Scenario, error) {
	state := newLuaState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runScript(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newLuaState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runScript(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "options", Function: scenarioOptions},
	{Name: "restart", Function: scenarioRestart},
	{Name: "roll", Function: scenarioRoll},
	{Name: "move", Function: scenarioMove},
	{Name: "skip", Function: scenarioSkip},
	{Name: "setup_shell", Function: scenarioSetupShell},
	{Name: "setup_player", Function: scenarioSetupPlayer},
	{Name: "setup_active", Function: scenarioSetupActive},
	{Name: "expect_phase", Function: scenarioExpectPhase},
	{Name: "expect_pool", Function: scenarioExpectPool},
	{Name: "expect_active", Function: scenarioExpectActive},
	{Name: "expect_bonus_roll", Function: scenarioExpectBonusRoll},
	{Name: "expect_shell", Function: scenarioExpectShell},
	{Name: "expect_hand", Function: scenarioExpectHand},
	{Name: "expect_finished", Function: scenarioExpectFinished},
	{Name: "expect_winner", Function: scenarioExpectWinner},
	{Name: "expect_move", Function: scenarioExpectMove},
	{Name: "expect_blocked", Function: scenarioExpectBlocked},
	{Name: "expect_rejected", Function: scenarioExpectRejected},
}

func scenarioOptions(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "options", tableToMap(state, 2))
	return chain(state)
}

func scenarioRestart(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "restart", optionalTable(state, 2))
	return chain(state)
}

func scenarioRoll(state *lua.State) int {
	scenario := checkScenario(state)
	die1 := lua.CheckInteger(state, 2)
	die2 := lua.CheckInteger(state, 3)
	appendStep(scenario, "roll", map[string]any{"die1": die1, "die2": die2})
	return chain(state)
}

func scenarioMove(state *lua.State) int {
	scenario := checkScenario(state)
	source := lua.CheckInteger(state, 2)
	target := lua.CheckInteger(state, 3)
	appendStep(scenario, "move", map[string]any{"source": source, "target": target})
	return chain(state)
}

func scenarioSkip(state *lua.State) int {
	appendStep(checkScenario(state), "skip", nil)
	return chain(state)
}

func scenarioSetupShell(state *lua.State) int {
	scenario := checkScenario(state)
	index := lua.CheckInteger(state, 2)
	seat := lua.CheckInteger(state, 3)
	stack := lua.CheckInteger(state, 4)
	appendStep(scenario, "setup_shell", map[string]any{"index": index, "seat": seat, "stack": stack})
	return chain(state)
}

func scenarioSetupPlayer(state *lua.State) int {
	scenario := checkScenario(state)
	seat := lua.CheckInteger(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["seat"] = seat
	appendStep(scenario, "setup_player", data)
	return chain(state)
}

func scenarioSetupActive(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "setup_active", map[string]any{"seat": lua.CheckInteger(state, 2)})
	return chain(state)
}

func scenarioExpectPhase(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_phase", map[string]any{"phase": lua.CheckString(state, 2)})
	return chain(state)
}

func scenarioExpectPool(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "expect_pool", map[string]any{"pool": tableToGo(state, 2)})
	return chain(state)
}

func scenarioExpectActive(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_active", map[string]any{"seat": lua.CheckInteger(state, 2)})
	return chain(state)
}

func scenarioExpectBonusRoll(state *lua.State) int {
	scenario := checkScenario(state)
	waiting := true
	if !state.IsNoneOrNil(2) {
		waiting = state.ToBoolean(2)
	}
	appendStep(scenario, "expect_bonus_roll", map[string]any{"waiting": waiting})
	return chain(state)
}

func scenarioExpectShell(state *lua.State) int {
	scenario := checkScenario(state)
	index := lua.CheckInteger(state, 2)
	data := optionalTable(state, 3)
	data["index"] = index
	appendStep(scenario, "expect_shell", data)
	return chain(state)
}

func scenarioExpectHand(state *lua.State) int {
	scenario := checkScenario(state)
	seat := lua.CheckInteger(state, 2)
	count := lua.CheckInteger(state, 3)
	appendStep(scenario, "expect_hand", map[string]any{"seat": seat, "count": count})
	return chain(state)
}

func scenarioExpectFinished(state *lua.State) int {
	scenario := checkScenario(state)
	seat := lua.CheckInteger(state, 2)
	count := lua.CheckInteger(state, 3)
	appendStep(scenario, "expect_finished", map[string]any{"seat": seat, "count": count})
	return chain(state)
}

func scenarioExpectWinner(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_winner", map[string]any{"seat": lua.CheckInteger(state, 2)})
	return chain(state)
}

func scenarioExpectMove(state *lua.State) int {
	scenario := checkScenario(state)
	source := lua.CheckInteger(state, 2)
	target := lua.CheckInteger(state, 3)
	data := map[string]any{"source": source, "target": target}
	if !state.IsNoneOrNil(4) {
		data["type"] = lua.CheckString(state, 4)
	}
	appendStep(scenario, "expect_move", data)
	return chain(state)
}

func scenarioExpectBlocked(state *lua.State) int {
	scenario := checkScenario(state)
	source := lua.CheckInteger(state, 2)
	target := lua.CheckInteger(state, 3)
	data := map[string]any{"source": source, "target": target}
	if !state.IsNoneOrNil(4) {
		data["reason"] = lua.CheckString(state, 4)
	}
	appendStep(scenario, "expect_blocked", data)
	return chain(state)
}

func scenarioExpectRejected(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_rejected", map[string]any{"code": lua.CheckString(state, 2)})
	return chain(state)
}

// chain returns the receiver so calls can be strung together.
func chain(state *lua.State) int {
	state.PushValue(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo converts a sequence table to []any and anything else to a map.
// An empty table is an empty sequence.
func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
