package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"graft/internal/diag"
)

const testManifest = `
[[macro]]
name = "AddCompletionHandler"
module = "Async"

  [[macro.role]]
  kind = "peer"
  policy = ["overloaded"]
  requires = ["async"]
  impl = "completion_handler"

[[macro]]
name = "Memberwise"
module = "Derive"

  [[macro.role]]
  kind = "member"
  policy = ["arbitrary"]
  impl = "memberwise_init"
`

const testUnit = `
[[decl]]
kind = "struct"
name = "User"

  [[decl.attr]]
  name = "Memberwise"

  [[decl.member]]
  kind = "var"
  name = "id"
  type = "Int"

[[decl]]
kind = "func"
name = "fetchUser"
result = "User"
async = true
body = "return await api.user(id: id)"

  [[decl.param]]
  label = "id"
  name = "id"
  type = "Int"

  [[decl.attr]]
  name = "AddCompletionHandler"
`

func writeProject(t *testing.T) (manifestPath, unitPath string) {
	t.Helper()
	dir := t.TempDir()
	manifestPath = filepath.Join(dir, "graft.toml")
	unitPath = filepath.Join(dir, "users.toml")
	if err := os.WriteFile(manifestPath, []byte(testManifest), 0o600); err != nil {
		t.Fatalf("не удалось записать манифест: %v", err)
	}
	if err := os.WriteFile(unitPath, []byte(testUnit), 0o600); err != nil {
		t.Fatalf("не удалось записать единицу: %v", err)
	}
	return manifestPath, unitPath
}

func TestExpandUnits(t *testing.T) {
	manifestPath, unitPath := writeProject(t)

	run, err := ExpandUnits(context.Background(), manifestPath, []string{unitPath}, Options{})
	if err != nil {
		t.Fatalf("ExpandUnits вернул ошибку: %v", err)
	}
	if run.HasErrors() {
		t.Fatalf("неожиданные диагностики: %+v", run.Units[0].Bag.Items())
	}
	if len(run.Units) != 1 {
		t.Fatalf("ожидался 1 результат, получено %d", len(run.Units))
	}

	res := run.Units[0]
	if res.FromCache {
		t.Error("первый прогон не должен попадать в кэш")
	}
	if res.Stats.FragmentsMerged != 2 {
		t.Errorf("ожидалось 2 слитых фрагмента (init и peer), получено %d", res.Stats.FragmentsMerged)
	}

	// memberwise init внутри User
	if !strings.Contains(res.Rendered, "func init(id: Int)") {
		t.Errorf("в выводе нет сгенерированного init:\n%s", res.Rendered)
	}
	// peer с перегруженным именем и параметром completionHandler
	if !strings.Contains(res.Rendered, "func fetchUser(id: Int, completionHandler: (User) -> Void)") {
		t.Errorf("в выводе нет peer-перегрузки:\n%s", res.Rendered)
	}
	if !strings.Contains(res.Rendered, "Task { completionHandler(await fetchUser(id: id)) }") {
		t.Errorf("тело peer-перегрузки неверно:\n%s", res.Rendered)
	}
}

func TestExpandUnitsDiskCache(t *testing.T) {
	manifestPath, unitPath := writeProject(t)
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("не удалось открыть кэш: %v", err)
	}

	first, err := ExpandUnits(context.Background(), manifestPath, []string{unitPath}, Options{Cache: cache})
	if err != nil {
		t.Fatalf("первый прогон вернул ошибку: %v", err)
	}
	if first.Units[0].FromCache {
		t.Fatal("первый прогон не должен попадать в кэш")
	}

	second, err := ExpandUnits(context.Background(), manifestPath, []string{unitPath}, Options{Cache: cache})
	if err != nil {
		t.Fatalf("второй прогон вернул ошибку: %v", err)
	}
	res := second.Units[0]
	if !res.FromCache {
		t.Fatal("второй прогон должен попасть в кэш")
	}
	if res.Rendered != first.Units[0].Rendered {
		t.Error("кэшированный вывод не совпадает с пересчитанным")
	}
	if res.Stats != first.Units[0].Stats {
		t.Errorf("кэшированная статистика не совпадает: %+v != %+v", res.Stats, first.Units[0].Stats)
	}

	// Изменение единицы инвалидирует ключ
	if err := os.WriteFile(unitPath, []byte(testUnit+"\n# touched\n"), 0o600); err != nil {
		t.Fatalf("не удалось изменить единицу: %v", err)
	}
	third, err := ExpandUnits(context.Background(), manifestPath, []string{unitPath}, Options{Cache: cache})
	if err != nil {
		t.Fatalf("третий прогон вернул ошибку: %v", err)
	}
	if third.Units[0].FromCache {
		t.Error("после изменения единицы кэш не должен срабатывать")
	}
}

func TestExpandUnitsManifestMissing(t *testing.T) {
	run, err := ExpandUnits(context.Background(), filepath.Join(t.TempDir(), "no.toml"), nil, Options{})
	if err != nil {
		t.Fatalf("ошибки инфраструктуры быть не должно: %v", err)
	}
	if !run.Bag.HasErrors() {
		t.Fatal("ожидалась диагностика об отсутствующем манифесте")
	}
	if run.Bag.Items()[0].Code != diag.PrjManifestInvalid {
		t.Errorf("ожидался код PrjManifestInvalid, получен %s", run.Bag.Items()[0].Code.ID())
	}
}

func TestExpandUnitsUnitMissing(t *testing.T) {
	manifestPath, _ := writeProject(t)

	run, err := ExpandUnits(context.Background(), manifestPath,
		[]string{filepath.Join(t.TempDir(), "no.toml")}, Options{})
	if err != nil {
		t.Fatalf("ошибки инфраструктуры быть не должно: %v", err)
	}
	res := run.Units[0]
	if !res.Bag.HasErrors() {
		t.Fatal("ожидалась диагностика о нечитаемой единице")
	}
	if res.Bag.Items()[0].Code != diag.PrjUnitInvalid {
		t.Errorf("ожидался код PrjUnitInvalid, получен %s", res.Bag.Items()[0].Code.ID())
	}
}

func TestExpandUnitsObserver(t *testing.T) {
	manifestPath, unitPath := writeProject(t)

	var mu sync.Mutex
	var events []UnitEvent
	_, err := ExpandUnits(context.Background(), manifestPath, []string{unitPath}, Options{
		Observer: func(ev UnitEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("ExpandUnits вернул ошибку: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("ожидалось 2 события, получено %d", len(events))
	}
	if events[0].Status != UnitStart || events[1].Status != UnitEnd {
		t.Errorf("неверный порядок событий: %+v", events)
	}
	if events[1].Path != unitPath || events[1].Total != 1 {
		t.Errorf("неверные поля события: %+v", events[1])
	}
}
