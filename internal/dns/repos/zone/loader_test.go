package zone

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/az-dns/internal/dns/domain"
)

func TestLoadZoneFileMaster(t *testing.T) {
	origin, records, err := LoadZoneFile("testdata/localdomain.zone", 300*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "localdomain.", origin.String())
	require.NotEmpty(t, records)

	byType := map[domain.RRType]int{}
	for _, rr := range records {
		byType[rr.Type]++
		assert.Equal(t, uint32(3600), rr.TTL, "all fixture records ride the $TTL directive")
	}
	assert.Equal(t, 1, byType[domain.RRTypeSOA])
	assert.Equal(t, 1, byType[domain.RRTypeNS])
	assert.Equal(t, 1, byType[domain.RRTypeDNAME])
	assert.Equal(t, 1, byType[domain.RRTypeCNAME])
	assert.Equal(t, 3, byType[domain.RRTypeA])
	assert.Equal(t, 1, byType[domain.RRTypeAAAA])
	assert.Equal(t, 1, byType[domain.RRTypeTXT])
}

func TestLoadZoneFileStructured(t *testing.T) {
	origin, records, err := LoadZoneFile("testdata/structured.yaml", 300*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "example.test.", origin.String())
	require.Len(t, records, 6)

	owners := map[string]int{}
	for _, rr := range records {
		owners[rr.Name.String()]++
		assert.Equal(t, uint32(300), rr.TTL, "structured records take the default TTL")
	}
	assert.Equal(t, 2, owners["example.test."])
	assert.Equal(t, 1, owners["ns1.example.test."])
	assert.Equal(t, 3, owners["www.example.test."])
}

func TestLoadZoneFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("not a zone"), 0o644))

	origin, records, err := LoadZoneFile(path, 300*time.Second)
	require.NoError(t, err)
	assert.True(t, origin.IsRoot())
	assert.Empty(t, records)
}

func TestLoadZoneDirectory(t *testing.T) {
	dir := t.TempDir()
	zoneText := `$TTL 1h
$ORIGIN example.org.
@   IN SOA ns1 hostmaster ( 1 3600 600 604800 300 )
@   IN NS  ns1
ns1 IN A   192.0.2.1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.org.zone"), []byte(zoneText), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	store, err := LoadZoneDirectory(dir, 300*time.Second)
	require.NoError(t, err)
	require.Len(t, store.Zones(), 1)
	assert.Equal(t, "example.org.", store.Zones()[0].String())
	assert.Equal(t, 3, store.Count())
}

func TestLoadZoneDirectoryMergesSameOrigin(t *testing.T) {
	dir := t.TempDir()
	base := `$TTL 1h
$ORIGIN example.org.
@   IN SOA ns1 hostmaster ( 1 3600 600 604800 300 )
@   IN NS  ns1
ns1 IN A   192.0.2.1
`
	extra := `zone_root: example.org
www:
  A: "192.0.2.2"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-base.zone"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-extra.yaml"), []byte(extra), 0o644))

	store, err := LoadZoneDirectory(dir, 300*time.Second)
	require.NoError(t, err)
	require.Len(t, store.Zones(), 1)
	assert.Equal(t, 4, store.Count())
}

func TestLoadZoneDirectoryFailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.zone"), []byte("$BOGUS\n"), 0o644))

	_, err := LoadZoneDirectory(dir, 300*time.Second)
	require.Error(t, err, "one malformed file must abort the whole load")
}

func TestLoadMasterFileWithoutSOA(t *testing.T) {
	dir := t.TempDir()
	text := `$TTL 1h
$ORIGIN example.org.
www IN A 192.0.2.1
`
	path := filepath.Join(dir, "nosoa.zone")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	_, _, err := LoadZoneFile(path, 300*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SOA record")
}
