// Package organize rebuilds a media library from playlists.
//
// # Manager
//
// The Manager drives the whole run, one playlist at a time:
//
//  1. List the playlists of the input directory
//  2. Read each playlist into a path table, reporting missing files
//  3. Extract the metadata of every referenced file
//  4. Hard link each file to Files/<artist>/<album>/<title>.<ext>
//  5. Write a playlist of the same name listing the new relative paths
//
// # Basic Usage
//
//	manager, err := organize.NewManager(settings, func(event organize.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := manager.Run(ctx); err != nil {
//	    log.Fatal(err) // only on cancellation or an unreadable input directory
//	}
//
// # Idempotence
//
// A destination that already exists is treated as organized: it is not
// linked again but still listed in the regenerated playlist. Running the
// Manager twice over unchanged input creates no new links and writes the
// same playlists.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Per playlist counts are available from Manager.Stats once a playlist is
// done, and GetProgress reports processed and known files for progress bars.
package organize
