// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package format_test

import (
	"strings"
	"testing"

	"code.hybscloud.com/tracefab"
	"code.hybscloud.com/tracefab/format"
	"code.hybscloud.com/tracefab/sink"
)

func TestLineProtocolFormatValues(t *testing.T) {
	buf := sink.NewBuffer()
	lp := &format.LineProtocol{Measurement: "cpu"}

	schema := []tracefab.Tag{tracefab.TagF64, tracefab.TagU32}
	if err := lp.FormatExpectedTypes(buf, schema); err != nil {
		t.Fatalf("FormatExpectedTypes: %v", err)
	}

	args := []tracefab.Argument{tracefab.ArgF64(3.5), tracefab.ArgU32(7)}
	if err := lp.FormatValues(buf, args); err != nil {
		t.Fatalf("FormatValues: %v", err)
	}

	out := string(buf.Bytes())
	if !strings.HasPrefix(out, "cpu ") {
		t.Fatalf("output %q does not start with the measurement name", out)
	}
	if !strings.Contains(out, "f0=") || !strings.Contains(out, "f1=") {
		t.Fatalf("output %q missing field names f0/f1", out)
	}
}

func TestLineProtocolDefaultMeasurement(t *testing.T) {
	buf := sink.NewBuffer()
	lp := &format.LineProtocol{}

	if err := lp.FormatValues(buf, []tracefab.Argument{tracefab.ArgU32(1)}); err != nil {
		t.Fatalf("FormatValues: %v", err)
	}
	out := string(buf.Bytes())
	if !strings.HasPrefix(out, "sample ") {
		t.Fatalf("output %q does not default to the \"sample\" measurement", out)
	}
}
