// Package files manages the published output directory.
//
// A run never writes into the output directory directly. It asks the
// Manager for a Staging directory beside it, writes every file there and
// then calls Publish, which swaps the directories by rename. On any error
// the caller discards the staging directory and the previously published
// output stays untouched:
//
//	staging, err := manager.Stage()
//	if err != nil {
//	    return err
//	}
//	defer staging.Discard()
//	// ... write into staging.Dir ...
//	return staging.Publish()
//
// Discovery lists published CSV files and leftover staging directories.
package files
