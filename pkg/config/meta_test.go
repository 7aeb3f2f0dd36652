package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
)

func writeMeta(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadMeta(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeMeta(t, "meta.json", `{
			"mir_overrides": {"LOT_ID": "L42", "STAT_NUM": 3},
			"atr_entries": ["operator: jd"],
			"head_number": 2
		}`)

		meta, err := LoadMeta(path)
		require.NoError(t, err)
		assert.Equal(t, "L42", meta.MIROverrides["LOT_ID"])
		assert.Equal(t, json.Number("3"), meta.MIROverrides["STAT_NUM"])
		assert.Equal(t, []string{"operator: jd"}, meta.ATREntries)
		require.NotNil(t, meta.HeadNumber)
		assert.Equal(t, 2, *meta.HeadNumber)
		assert.Nil(t, meta.SiteNumber)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeMeta(t, "meta.yml", "mir_overrides:\n  NODE_NAM: tester-7\nsite_number: 5\n")

		meta, err := LoadMeta(path)
		require.NoError(t, err)
		assert.Equal(t, "tester-7", meta.MIROverrides["NODE_NAM"])
		require.NotNil(t, meta.SiteNumber)
		assert.Equal(t, 5, *meta.SiteNumber)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMeta(filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeMeta(t, "meta.json", `["not", "an", "object"]`)
		_, err := LoadMeta(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse metadata file")
	})
}

func TestMetaApply(t *testing.T) {
	head, site := 4, 9
	meta := &Meta{
		MIROverrides: map[string]any{"LOT_ID": "L1"},
		ATREntries:   []string{"note"},
		HeadNumber:   &head,
		SiteNumber:   &site,
	}

	rc := assemble.DefaultRunConfig()
	rc.ExtraLogEntries = []string{"cli"}
	require.NoError(t, meta.Apply(&rc))

	assert.Equal(t, uint8(4), rc.HeadNumber)
	assert.Equal(t, uint8(9), rc.SiteNumber)
	assert.Equal(t, "L1", rc.MIROverrides["LOT_ID"])
	assert.Equal(t, []string{"cli", "note"}, rc.ExtraLogEntries)

	t.Run("out of range", func(t *testing.T) {
		bad := 300
		rc := assemble.DefaultRunConfig()
		err := (&Meta{HeadNumber: &bad}).Apply(&rc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "head_number")
		assert.Equal(t, uint8(1), rc.HeadNumber)
	})
}
