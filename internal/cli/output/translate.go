package output

import (
	"golang.org/x/text/language"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var lang = language.English

var translations = map[language.Tag]map[string]string{
	language.English: {
		"launcher.description": "Launches the ModOrganizer export shortcut and plans Skyrim alchemy.",
		"launcher.copyright":   "Copyright (c) Skyrim Alchemy contributors",
		"launcher.license":     "Licensed under the MIT License",
		"launcher.warning":     "warning",
		"launcher.error":       "error",
		"launcher.tip":         "tip",

		"launch":           "Run the ModOrganizer shortcut that exports game data (default)",
		"export":           "Export ingredients and magic effects from the load order",
		"suggest":          "Suggest the most valuable potions",
		"loadorder":        "Print the active load order",
		"config":           "Manage the configuration file",
		"config_show":      "Print the active configuration",
		"config_init":      "Write the default configuration file",
		"config_path":      "Print the configuration file path",
		"openlog":          "Open the export log file",
		"completions":      "Output shell completion code",
		"about":            "Display information about the program",
		"arg_verbosity":    "Output verbosity",
		"arg_dir":          "Directory holding configuration and logs",
		"arg_nocolor":      "Disable colored output",
		"arg_lang":         "Interface language",
		"arg_gamepath":     "Skyrim Special Edition installation directory",
		"arg_localpath":    "Directory holding plugins.txt",
		"arg_logfile":      "Write all output of the command to this file",
		"arg_exportpath":   "Where to write the game data JSON",
		"arg_datapath":     "Game data JSON to read",
		"arg_blacklist":    "File listing ingredients that must not be used",
		"arg_whitelist":    "File listing the only ingredients that may be used",
		"arg_limit":        "Number of potions to print",
		"arg_json":         "Print as JSON",
		"arg_force":        "Overwrite an existing file",
		"arg_group_filter": "Ingredient filter",

		"export.reading":     "Reading the load order of %s",
		"export.loadorder":   "Load order has %d plugins",
		"export.parsing":     "Parsing plugins",
		"export.ingredients": "Exported %d ingredients and %d effects",
		"export.written":     "Game data written to %s",
		"suggest.reading":    "Reading %s",
		"suggest.loaded":     "Loaded %d ingredients and %d effects",
		"suggest.computing":  "Computing potions",
		"suggest.found":      "Found %d potions",
		"suggest.none":       "No potions can be brewed from these ingredients",
		"suggest.purged":     "Dropped %d invalid ingredients",
		"table.rank":         "#",
		"table.gold":         "Gold",
		"table.name":         "Name",
		"table.ingredients":  "Ingredients",
		"table.index":        "Index",
		"table.plugin":       "Plugin",
		"table.light":        "Light",
		"config.written":     "Configuration written to %s",
		"config.downstream":  "Command line of the export shortcut:",
		"openlog.opening":    "Opening %s",

		"tip.modorganizer": "Set launcher.mod_organizer in the configuration file, see 'config path'",
		"tip.configexists": "Pass --force to overwrite the configuration file",
		"tip.gamedata":     "Run the export first to create the game data file",
		"tip.loadorder":    "Check --game-path and --local-path",
	},
	language.Russian: {
		"launcher.description": "Запускает ярлык экспорта ModOrganizer и подбирает зелья Skyrim.",
		"launcher.copyright":   "Copyright (c) Skyrim Alchemy contributors",
		"launcher.license":     "Распространяется по лицензии MIT",
		"launcher.warning":     "предупреждение",
		"launcher.error":       "ошибка",
		"launcher.tip":         "совет",

		"launch":           "Запустить ярлык ModOrganizer для экспорта данных (по умолчанию)",
		"export":           "Экспортировать ингредиенты и эффекты из порядка загрузки",
		"suggest":          "Предложить самые дорогие зелья",
		"loadorder":        "Показать активный порядок загрузки",
		"config":           "Управление файлом конфигурации",
		"config_show":      "Показать текущую конфигурацию",
		"config_init":      "Записать конфигурацию по умолчанию",
		"config_path":      "Показать путь к файлу конфигурации",
		"openlog":          "Открыть журнал экспорта",
		"completions":      "Вывести код автодополнения для оболочки",
		"about":            "Показать информацию о программе",
		"arg_verbosity":    "Подробность вывода",
		"arg_dir":          "Каталог конфигурации и журналов",
		"arg_nocolor":      "Отключить цветной вывод",
		"arg_lang":         "Язык интерфейса",
		"arg_gamepath":     "Каталог установки Skyrim Special Edition",
		"arg_localpath":    "Каталог с plugins.txt",
		"arg_logfile":      "Записать весь вывод команды в этот файл",
		"arg_exportpath":   "Куда записать JSON с данными игры",
		"arg_datapath":     "JSON с данными игры",
		"arg_blacklist":    "Файл с запрещёнными ингредиентами",
		"arg_whitelist":    "Файл с единственно разрешёнными ингредиентами",
		"arg_limit":        "Сколько зелий показать",
		"arg_json":         "Вывести в формате JSON",
		"arg_force":        "Перезаписать существующий файл",
		"arg_group_filter": "Фильтр ингредиентов",

		"export.reading":     "Чтение порядка загрузки %s",
		"export.loadorder":   "В порядке загрузки %d плагинов",
		"export.parsing":     "Разбор плагинов",
		"export.ingredients": "Экспортировано ингредиентов: %d, эффектов: %d",
		"export.written":     "Данные игры записаны в %s",
		"suggest.reading":    "Чтение %s",
		"suggest.loaded":     "Загружено ингредиентов: %d, эффектов: %d",
		"suggest.computing":  "Подбор зелий",
		"suggest.found":      "Найдено зелий: %d",
		"suggest.none":       "Из этих ингредиентов нельзя сварить зелье",
		"suggest.purged":     "Отброшено некорректных ингредиентов: %d",
		"table.rank":         "№",
		"table.gold":         "Золото",
		"table.name":         "Название",
		"table.ingredients":  "Ингредиенты",
		"table.index":        "Индекс",
		"table.plugin":       "Плагин",
		"table.light":        "Лёгкий",
		"config.written":     "Конфигурация записана в %s",
		"config.downstream":  "Командная строка ярлыка экспорта:",
		"openlog.opening":    "Открытие %s",

		"tip.modorganizer": "Укажите launcher.mod_organizer в файле конфигурации, см. 'config path'",
		"tip.configexists": "Добавьте --force, чтобы перезаписать конфигурацию",
		"tip.gamedata":     "Сначала выполните экспорт, чтобы создать файл данных",
		"tip.loadorder":    "Проверьте --game-path и --local-path",
	},
}

// SetLang selects the closest supported language to tag.
func SetLang(tag language.Tag) {
	_, index, _ := matcher.Match(tag)
	lang = supported[index]
}

// Lang returns the selected language.
func Lang() language.Tag {
	return lang
}

// Translate returns the message for key in the selected language, falling
// back to English and then to the key itself.
func Translate(key string) string {
	if s, ok := translations[lang][key]; ok {
		return s
	}
	if s, ok := translations[language.English][key]; ok {
		return s
	}
	return key
}

// Translations returns every message in the selected language.
func Translations() map[string]string {
	m := make(map[string]string, len(translations[language.English]))
	for k, v := range translations[language.English] {
		m[k] = v
	}
	for k, v := range translations[lang] {
		m[k] = v
	}
	return m
}
