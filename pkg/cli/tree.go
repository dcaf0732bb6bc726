package cli

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/idreset/idreset/internal/appdir"
	"github.com/idreset/idreset/pkg/storage"
)

// backupTree renders the storage directory with the storage file and the
// backup artifacts:
//
//	/home/u/.config/Cursor/User/globalStorage
//	├── storage.json
//	╰── backups
//	    ├── storage.json.backup_20240309_140507
//	    ╰── MachineGuid_20240309_140507.reg
func backupTree(ctx context.Context, fs storage.FileSystem, paths appdir.Paths) (string, error) {
	root := tree.Root(paths.GlobalStorageDir).Enumerator(tree.RoundedEnumerator)

	if ok, _ := fs.Exists(ctx, paths.StorageFile); ok {
		root.Child(filepath.Base(paths.StorageFile))
	}

	names, err := storage.ListBackups(ctx, fs, paths.BackupDir)
	if err != nil {
		return "", err
	}

	label := paths.BackupDir
	if filepath.Dir(paths.BackupDir) == filepath.Clean(paths.GlobalStorageDir) {
		label = filepath.Base(paths.BackupDir)
	}
	backups := tree.Root(label).Enumerator(tree.RoundedEnumerator)
	if len(names) == 0 {
		backups.Child("(no backups)")
	}
	for _, name := range names {
		backups.Child(name)
	}
	root.Child(backups)

	return root.String(), nil
}
