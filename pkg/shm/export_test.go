package shm

var WriteRegionDetail = writeRegionDetail
