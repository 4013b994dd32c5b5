// Package persistence writes archival records to the data directory.
package persistence

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path"
	"time"
)

// DataFile describes an archival record written to disk.
type DataFile struct {
	// Prefix is the data directory the file was written under.
	Prefix string
	// Datatype is the first path element below Prefix, e.g. "bench1".
	Datatype string
	// Subtest distinguishes records of the same datatype.
	Subtest string
	// UUID is the measurement ID the record belongs to.
	UUID string
	// Path is the full path of the file.
	Path string
	// Size is the size of the compressed file.
	Size int64
}

// WriteDataFile writes the gzipped JSON encoding of result to
// <datadir>/<datatype>/<YYYY>/<MM>/<DD>/<datatype>-<subtest>-<timestamp>.<uuid>.json.gz.
// Existing files are never overwritten.
func WriteDataFile(datadir, datatype, subtest, uuid string, result any) (*DataFile, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC()
	dir := path.Join(datadir, datatype, timestamp.Format("2006/01/02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	filepath := path.Join(dir, datatype+"-"+subtest+"-"+
		timestamp.Format("20060102T150405.000000000Z")+"."+uuid+".json.gz")
	fp, err := os.OpenFile(filepath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	writer, err := gzip.NewWriterLevel(fp, gzip.BestSpeed)
	if err != nil {
		fp.Close()
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		fp.Close()
		return nil, err
	}
	// Close the gzip writer first so the footer is flushed to fp.
	if err := writer.Close(); err != nil {
		fp.Close()
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if err := fp.Close(); err != nil {
		return nil, err
	}
	return &DataFile{
		Prefix:   datadir,
		Datatype: datatype,
		Subtest:  subtest,
		UUID:     uuid,
		Path:     filepath,
		Size:     info.Size(),
	}, nil
}

// ReadDataFile decodes the archival record at path into v.
func ReadDataFile(path string, v any) error {
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	reader, err := gzip.NewReader(fp)
	if err != nil {
		return err
	}
	defer reader.Close()
	return json.NewDecoder(reader).Decode(v)
}
