package version

import "testing"

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Error("Version должна иметь значение по умолчанию")
	}
}

func TestVersionOverride(t *testing.T) {
	// ldflags перекрывают значения на этапе сборки
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2026-08-25T10:30:00Z"

	if Version != "1.2.3" || GitCommit != "abc123def456" || BuildDate != "2026-08-25T10:30:00Z" {
		t.Errorf("переопределение не сработало: %q %q %q", Version, GitCommit, BuildDate)
	}
}
