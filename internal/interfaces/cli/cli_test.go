package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const testConfigYAML = `
server:
  mode: test
redis:
  addr: "localhost:6379"
kafka:
  brokers: ["localhost:9092"]
  group_id: "gaengine-cli-test"
minio:
  bucket: "ga-documents"
fee_registry:
  base_url: "http://fees-register:4411"
payments:
  base_url: "http://payments:8080"
notify:
  case_details_base_url: "http://civil-citizen-ui"
calendar:
  holidays_file: %HOLIDAYS%
log:
  level: error
  format: json
`

const testHolidaysYAML = `division: england-and-wales
holidays:
  - date: 2024-05-06
    title: Early May bank holiday
`

const testPricesYAML = `fees:
  - keyword: GAOnNotice
    amount_pence: 30300
    code: FEE0443
    version: "2"
  - keyword: GeneralAppWithoutNotice
    amount_pence: 11900
    code: FEE0444
    version: "3"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return writeFile(t, dir, name, string(data))
}

func testConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	holidays := writeFile(t, dir, "holidays.yaml", testHolidaysYAML)
	path = writeFile(t, dir, "gaengine.yaml", strings.Replace(testConfigYAML, "%HOLIDAYS%", holidays, 1))
	return dir, path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil {
		PrintError(cmd, err)
	}
	return out.String(), errOut.String(), err
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "gaengine", cmd.Use)

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"fee", "decide", "hwf", "deadline", "serve", "worker"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestFeeCommand_PriceList(t *testing.T) {
	dir, cfg := testConfig(t)
	prices := writeFile(t, dir, "prices.yaml", testPricesYAML)
	input := writeJSON(t, dir, "app.json", generalapp.Application{
		CaseReference: "1700000000000001",
		Types:         []generalapp.ApplicationType{generalapp.StrikeOut},
		WithNotice:    true,
	})

	out, _, err := run(t, "--config", cfg, "fee", "-i", input, "--prices", prices)
	require.NoError(t, err)

	var res workflow.FeeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, int64(30300), res.Fee.AmountPence)
	assert.Equal(t, "FEE0443", res.Fee.Code)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "GAOnNotice", res.Candidates[0].Request.Keyword)
}

func TestFeeCommand_TableOutput(t *testing.T) {
	dir, cfg := testConfig(t)
	prices := writeFile(t, dir, "prices.yaml", testPricesYAML)
	input := writeJSON(t, dir, "app.json", generalapp.Application{
		CaseReference: "1700000000000001",
		Types:         []generalapp.ApplicationType{generalapp.StrikeOut},
		WithNotice:    true,
	})

	out, _, err := run(t, "--config", cfg, "-o", "table", "fee", "-i", input, "--prices", prices)
	require.NoError(t, err)
	assert.Contains(t, out, "KEYWORD")
	assert.Contains(t, out, "£303.00")
}

func TestFeeCommand_MissingPrice(t *testing.T) {
	dir, cfg := testConfig(t)
	prices := writeFile(t, dir, "prices.yaml", "fees: []\n")
	input := writeJSON(t, dir, "app.json", generalapp.Application{
		CaseReference: "1700000000000001",
		Types:         []generalapp.ApplicationType{generalapp.StrikeOut},
		WithNotice:    true,
	})

	_, _, err := run(t, "--config", cfg, "fee", "-i", input, "--prices", prices)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoFeesReturned))
}

func TestDecideCommand_Dismissal(t *testing.T) {
	dir, cfg := testConfig(t)
	input := writeJSON(t, dir, "decision.json", workflow.DecisionRequest{
		Application: generalapp.Application{
			CaseReference:       "1700000000000002",
			ParentCaseReference: "1600000000000009",
			Types:               []generalapp.ApplicationType{generalapp.ExtendTime},
			WithNotice:          true,
			State:               generalapp.AwaitingJudicialDecision,
		},
		Decision: decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeDismiss}),
	})

	out, _, err := run(t, "--config", cfg, "decide", "-i", input)
	require.NoError(t, err)

	var res workflow.DecisionOutcome
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, decision.JudgeDismissed, res.Criterion)
	assert.Equal(t, generalapp.AwaitingJudicialDecision, res.PreviousState)
	assert.Equal(t, generalapp.ApplicationDismissed, res.NextState)
	assert.Equal(t, generalapp.ApplicationDismissed, res.Application.State)
	assert.Nil(t, res.Document)
}

func TestDecideCommand_InvalidDecision(t *testing.T) {
	dir, cfg := testConfig(t)
	input := writeJSON(t, dir, "decision.json", workflow.DecisionRequest{
		Application: generalapp.Application{CaseReference: "1700000000000002", State: generalapp.AwaitingJudicialDecision},
		Decision:    decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeApproveOrEdit}),
	})

	_, stderr, err := run(t, "--config", cfg, "decide", "-i", input)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
	assert.Contains(t, stderr, decision.MsgOrderTextRequired)
}

func TestHwfCommand_FullRemission(t *testing.T) {
	dir, cfg := testConfig(t)
	input := writeJSON(t, dir, "hwf.json", workflow.HwfRequest{
		CaseReference: "1700000000000003",
		Record: hwf.Record{
			ActiveFeeType:   hwf.FeeTypeApplication,
			ReferenceNumber: "HWF-A1B-23C",
			Types:           []generalapp.ApplicationType{generalapp.ExtendTime},
			ApplicationFee:  &generalapp.Fee{AmountPence: 27500, Code: "FEE0444", Version: "1"},
		},
		Event: hwf.Event{Kind: hwf.EventFullRemission},
	})

	out, _, err := run(t, "--config", cfg, "hwf", "-i", input)
	require.NoError(t, err)

	var res hwf.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, generalapp.NotifyApplicantLipHwf, res.NextEvent)
	require.NotNil(t, res.Record.Application)
	assert.Equal(t, int64(27500), res.Record.Application.RemissionPence)
}

func TestDeadlineCommand_WorkingDays(t *testing.T) {
	_, cfg := testConfig(t)

	out, _, err := run(t, "--config", cfg, "deadline", "--from", "2024-05-03", "--days", "5", "--working")
	require.NoError(t, err)

	var res workflow.DeadlineResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "13 May 2024", res.Formatted)
	assert.Equal(t, 1, res.Holidays)
}

func TestDeadlineCommand_BadDate(t *testing.T) {
	_, cfg := testConfig(t)

	_, _, err := run(t, "--config", cfg, "deadline", "--from", "3rd May", "--days", "5")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestReadInput_InvalidJSON(t *testing.T) {
	dir, cfg := testConfig(t)
	input := writeFile(t, dir, "broken.json", "{not json")

	_, _, err := run(t, "--config", cfg, "hwf", "-i", input)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

func TestReadInput_Stdin(t *testing.T) {
	_, cfg := testConfig(t)
	body, err := json.Marshal(workflow.HwfRequest{
		CaseReference: "1700000000000003",
		Record: hwf.Record{
			ActiveFeeType:  hwf.FeeTypeApplication,
			Types:          []generalapp.ApplicationType{generalapp.ExtendTime},
			ApplicationFee: &generalapp.Fee{AmountPence: 27500, Code: "FEE0444", Version: "1"},
		},
		Event: hwf.Event{Kind: hwf.EventFullRemission},
	})
	require.NoError(t, err)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(bytes.NewReader(body))
	cmd.SetArgs([]string{"--config", cfg, "hwf"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), string(generalapp.NotifyApplicantLipHwf))
}

func TestConfig_MissingFile(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "deadline", "--days", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]string{"A", "LONGER"}, [][]string{{"value", "x"}, {"v"}})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "A      LONGER"))
	assert.True(t, strings.HasPrefix(lines[2], "value  x"))

	assert.Empty(t, FormatTable(nil, nil))
}

//Personal.AI order the ending
