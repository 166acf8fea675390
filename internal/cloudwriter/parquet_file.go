package cloudwriter

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// ParquetFile lets a parquet writer stream into a CloudWriter. It only
// supports writing; the object is uploaded when the file is closed.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func NewParquetFile(cloudWriter CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: cloudWriter}
}

// Open and Create return the receiver: the object is created by writing to it.
func (c *ParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *ParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *ParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *ParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *ParquetFile) Close() error {
	return c.cloudWriter.Close()
}
