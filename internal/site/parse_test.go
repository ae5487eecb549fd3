package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homepageFixture = `
<html><body>
  <div class="contest-header">
    <div class="contest-status">開催中</div>
  </div>
  <a class="contest-name" href="/contests/OMC249">OMC249</a>

  <div class="contest-header">
    <div class="contest-status">終了済</div>
  </div>
  <a class="contest-name" href="/contests/omcb047/">OMCB047</a>

  <div class="contest-header">
    <div class="contest-status">終了済</div>
  </div>
  <a class="contest-name" href="/contests/omc248">OMC248</a>
</body></html>`

func TestParseContestsByStatus(t *testing.T) {
	running := parseContestsByStatus(homepageFixture, statusRunning)
	assert.Equal(t, []string{"OMC249"}, running)

	ended := parseContestsByStatus(homepageFixture, statusEnded)
	assert.Equal(t, []string{"omcb047", "omc248"}, ended)
}

func TestParseContestByStatus(t *testing.T) {
	latest, err := parseContestByStatus(homepageFixture, statusEnded)
	require.NoError(t, err)
	assert.Equal(t, "omcb047", latest)

	none, err := parseContestByStatus(`<html><body></body></html>`, statusEnded)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseTaskIDs(t *testing.T) {
	fixture := `
<html><body>
  <a href="/contests/omcb047/tasks/11406">C</a>
  <a href="/contests/omcb047/tasks/11404">A</a>
  <a href="/contests/omcb047/tasks/11404">A again</a>
  <a href="/contests/omcb047/tasks/11405/">B</a>
  <a href="/contests/omcb047/tasks/drafts">not numeric</a>
  <a href="/contests/other/tasks/999">other contest</a>
  <a href="/contests/omcb047/editorial">editorial</a>
</body></html>`

	ids := parseTaskIDs(fixture, "omcb047")
	assert.Equal(t, []string{"11404", "11405", "11406"}, ids)
}

func TestParseContestList(t *testing.T) {
	fixture := `
<html><body>
  <div class="table-responsive">
    <table>
      <tr><td><a href="/contests/omc249">OMC249</a></td></tr>
      <tr><td><a href="/contests/omcb047/">OMCB047</a></td></tr>
      <tr><td><a href="/contests/all?page=2">next</a></td></tr>
    </table>
  </div>
  <a href="/contests/hidden">outside the table</a>
</body></html>`

	names := parseContestList(fixture)
	assert.Equal(t, []string{"omc249", "omcb047"}, names)
}

func TestParseUserEditorialLinks(t *testing.T) {
	fixture := `
<html><body>
  <div id="editorials">
    <a href="/contests/omc249/editorial/11406">公式解説</a>
    <a href="/contests/omc249/editorial/11406/123">ユーザー解説 by alice</a>
    <a href="/contests/omc249/editorial/11406/123">duplicate</a>
    <a href="/contests/omc249/editorial/11404/456">ユーザー解説 by bob</a>
    <a href="/contests/other/editorial/1/2">other contest</a>
  </div>
  <a href="/contests/omc249/editorial/11405/789">outside container</a>
</body></html>`

	refs := parseUserEditorialLinks(fixture, "omc249")
	require.Len(t, refs, 2)
	assert.Equal(t, "11406", refs[0].ItemID)
	assert.Equal(t, "123", refs[0].UserID)
	assert.Equal(t, "11404", refs[1].ItemID)
	assert.Equal(t, "456", refs[1].UserID)
	for _, ref := range refs {
		assert.Equal(t, "omc249", ref.ContestID)
	}
}

func TestParseUserEditorialLinksNoContainer(t *testing.T) {
	refs := parseUserEditorialLinks(`<html><body><a href="/contests/x/editorial/1/2">y</a></body></html>`, "x")
	assert.Nil(t, refs)
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{"stated duration", `<html><body><p>コンテスト時間: 100分</p></body></html>`, 100},
		{"no duration falls back", `<html><body><p>nothing here</p></body></html>`, 60},
		{"spaced digits", `<html><body>75 分</body></html>`, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDurationMinutes(tt.html))
		})
	}
}

func TestContestIDFromHref(t *testing.T) {
	assert.Equal(t, "omc249", contestIDFromHref("/contests/omc249"))
	assert.Equal(t, "omc249", contestIDFromHref("/contests/omc249/"))
	assert.Equal(t, "omc249", contestIDFromHref("omc249"))
}
