package shm

import (
	"fmt"
	"io"
	"os"

	internalshm "github.com/srediag/shmemdev/internal/shm"
)

// DebugRegionDetail prints the state of the segment and semaphore behind path.
func DebugRegionDetail(path string) {
	writeRegionDetail(os.Stdout, path)
}

func writeRegionDetail(w io.Writer, path string) {
	key, err := DeriveKey(path)
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	if id, err := internalshm.LookupSegment(int(key), 0); err != nil {
		fmt.Fprintf(w, "path:%s key:%s segment: %v\n", path, key, err)
	} else if st, err := internalshm.StatSegment(id); err != nil {
		fmt.Fprintf(w, "path:%s key:%s segment: %v\n", path, key, err)
	} else {
		fmt.Fprintf(w, "path:%s key:%s segment id:%d size:%d attached:%d creator:%d last:%d\n",
			path, key, st.ID, st.Size, st.Attachments, st.CreatorPID, st.LastPID)
	}
	if set, err := internalshm.LookupSemSet(int(key)); err != nil {
		fmt.Fprintf(w, "path:%s key:%s semaphore: %v\n", path, key, err)
	} else if v, err := set.Value(); err != nil {
		fmt.Fprintf(w, "path:%s key:%s semaphore: %v\n", path, key, err)
	} else {
		fmt.Fprintf(w, "path:%s key:%s semaphore id:%d value:%d\n", path, key, set.ID, v)
	}
}
