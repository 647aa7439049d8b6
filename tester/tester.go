package tester

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/moka/driver"
	"github.com/nihei9/moka/lexer"
)

type TestResult struct {
	TestCasePath string
	Error        error

	// Expected and Actual are set when a parse succeeded but its output didn't match.
	Expected string
	Actual   string
}

func (r *TestResult) String() string {
	if r.Error != nil {
		const indent1 = "    "
		const indent2 = indent1 + indent1

		msgLines := strings.Split(r.Error.Error(), "\n")
		msg := fmt.Sprintf("Failed %v:\n%v%v", r.TestCasePath, indent1, strings.Join(msgLines, "\n"+indent1))
		if r.Expected == "" && r.Actual == "" {
			return msg
		}
		return fmt.Sprintf("%v\n%vexpected: %q\n%vactual:   %q", msg, indent2, r.Expected, indent2, r.Actual)
	}
	return fmt.Sprintf("Passed %v", r.TestCasePath)
}

type TestCaseWithMetadata struct {
	TestCase *TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file, or every test case file under a directory recursively.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	fi, err := os.Stat(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	if !fi.IsDir() {
		c, err := parseTestCase(testPath)
		return []*TestCaseWithMetadata{
			{
				TestCase: c,
				FilePath: testPath,
				Error:    err,
			},
		}
	}

	es, err := os.ReadDir(testPath)
	if err != nil {
		return []*TestCaseWithMetadata{
			{
				FilePath: testPath,
				Error:    err,
			},
		}
	}
	var cases []*TestCaseWithMetadata
	for _, e := range es {
		cs := ListTestCases(filepath.Join(testPath, e.Name()))
		cases = append(cases, cs...)
	}
	return cases
}

func parseTestCase(testCasePath string) (*TestCase, error) {
	f, err := os.Open(testCasePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTestCase(f)
}

type Tester struct {
	Parser  *driver.Parser[string]
	LexSpec *lexer.Spec
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		rs = append(rs, t.runTest(c))
	}
	return rs
}

func (t *Tester) runTest(c *TestCaseWithMetadata) *TestResult {
	if c.Error != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        c.Error,
		}
	}

	toks, err := t.LexSpec.NewTokenStream(bytes.NewReader(c.TestCase.Source))
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}
	out, err := t.Parser.Parse(toks)
	if err != nil {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
		}
	}

	if strings.TrimSpace(out) != c.TestCase.Output {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        fmt.Errorf("output mismatch"),
			Expected:     c.TestCase.Output,
			Actual:       out,
		}
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}
