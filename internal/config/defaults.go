package config

// Default returns a configuration populated with every default value.
// Load decodes the user's file over this, so absent keys keep these
// values.
func Default() *Config {
	return &Config{
		Paths: Paths{
			Root:     "~/Downloads",
			StateDir: "~/.local/share/shelve",
			LogDir:   "~/.local/share/shelve/logs",
		},
		Safety: Safety{
			Platform: "auto",
		},
		Rules: Rules{
			LargeFileThresholdMB: 100,
			LargeFileDestination: "Large Files",
			OldFileDays:          180,
			OldFileDestination:   "Archive/Old",
			FallbackDestination:  "Uncategorized",
			Extensions:           defaultExtensions(),
		},
		Scan: Scan{
			IncludeHidden: false,
		},
		Watch: Watch{
			DebounceSeconds: 5,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

func defaultExtensions() map[string]string {
	return map[string]string{
		".pdf":  "Documents/PDFs",
		".doc":  "Documents/Word",
		".docx": "Documents/Word",
		".txt":  "Documents/Text",
		".md":   "Documents/Text",
		".xls":  "Documents/Spreadsheets",
		".xlsx": "Documents/Spreadsheets",
		".csv":  "Documents/Spreadsheets",
		".ppt":  "Documents/Presentations",
		".pptx": "Documents/Presentations",
		".jpg":  "Media/Images",
		".jpeg": "Media/Images",
		".png":  "Media/Images",
		".gif":  "Media/Images",
		".svg":  "Media/Images",
		".mp4":  "Media/Video",
		".mkv":  "Media/Video",
		".mov":  "Media/Video",
		".mp3":  "Media/Audio",
		".flac": "Media/Audio",
		".wav":  "Media/Audio",
		".zip":  "Archives",
		".tar":  "Archives",
		".gz":   "Archives",
		".7z":   "Archives",
		".rar":  "Archives",
		".go":   "Code",
		".py":   "Code",
		".js":   "Code",
		".sh":   "Code",
		".exe":  "Installers",
		".msi":  "Installers",
		".dmg":  "Installers",
		".deb":  "Installers",
		".rpm":  "Installers",
		".iso":  "Disk Images",
	}
}
