// Package potree holds the fixed output point schema consumed by the
// potree streaming client.
package potree

// Schema is the pc_schema XML document recorded alongside each loaded
// table. Coordinates are 32-bit integers quantized at the client-facing
// scale; the remaining dimensions pass through unscaled.
const Schema = `<?xml version="1.0" encoding="UTF-8"?>
<pc:PointCloudSchema xmlns:pc="http://pointcloud.org/schemas/PC/1.1"
                     xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <pc:dimension>
    <pc:position>1</pc:position>
    <pc:size>4</pc:size>
    <pc:description>X coordinate</pc:description>
    <pc:name>X</pc:name>
    <pc:interpretation>int32_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>2</pc:position>
    <pc:size>4</pc:size>
    <pc:description>Y coordinate</pc:description>
    <pc:name>Y</pc:name>
    <pc:interpretation>int32_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>3</pc:position>
    <pc:size>4</pc:size>
    <pc:description>Z coordinate</pc:description>
    <pc:name>Z</pc:name>
    <pc:interpretation>int32_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>4</pc:position>
    <pc:size>2</pc:size>
    <pc:description>Pulse return magnitude</pc:description>
    <pc:name>Intensity</pc:name>
    <pc:interpretation>uint16_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>5</pc:position>
    <pc:size>1</pc:size>
    <pc:description>ASPRS classification</pc:description>
    <pc:name>Classification</pc:name>
    <pc:interpretation>uint8_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>6</pc:position>
    <pc:size>2</pc:size>
    <pc:description>Red channel</pc:description>
    <pc:name>Red</pc:name>
    <pc:interpretation>uint16_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>7</pc:position>
    <pc:size>2</pc:size>
    <pc:description>Green channel</pc:description>
    <pc:name>Green</pc:name>
    <pc:interpretation>uint16_t</pc:interpretation>
  </pc:dimension>
  <pc:dimension>
    <pc:position>8</pc:position>
    <pc:size>2</pc:size>
    <pc:description>Blue channel</pc:description>
    <pc:name>Blue</pc:name>
    <pc:interpretation>uint16_t</pc:interpretation>
  </pc:dimension>
  <pc:metadata>
    <Metadata name="compression">none</Metadata>
  </pc:metadata>
</pc:PointCloudSchema>`
